package session

// Flags gate receive-side behavior.  The zero value is NOT the default:
// use DefaultFlags (reception stops on carrier loss, no silence stream).
type Flags struct {
	// StopOnCarrierLoss ends reception on the first carrier-down status.
	// When false, reception runs until the far end hangs up.
	StopOnCarrierLoss bool
	// EmitSilence streams silence blocks back toward the far end while
	// listening.  Some far ends misbehave without return audio.
	EmitSilence bool
}

func DefaultFlags() Flags {
	return Flags{StopOnCarrierLoss: true}
}

// ParseFlags reads a compact option string: 'h' keeps receiving until
// hangup instead of stopping on carrier loss, 's' turns the silence stream
// on.  Order does not matter, repeats are harmless, unknown characters are
// ignored.
func ParseFlags(s string) Flags {
	f := DefaultFlags()
	for _, c := range s {
		switch c {
		case 'h':
			f.StopOnCarrierLoss = false
		case 's':
			f.EmitSilence = true
		}
	}
	return f
}
