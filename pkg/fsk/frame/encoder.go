package frame

// 8N1 async serial framing: every byte goes out as ten line bits, a start
// bit (0), eight data bits LSB first, and a stop bit (1).  The idle line
// is held at 1.
const (
	BitsPerFrame = 10
	startBit     = 0
	stopBit      = 1
	idleBit      = 1
)

// Encoder turns a message into a stream of 8N1 line bits, one bit per call.
// It is driven by the modulator's bit clock: each NextBit call corresponds
// to exactly one transmitted symbol.  An Encoder serves a single
// transmission and must not be shared across concurrent sessions.
type Encoder struct {
	source   []byte
	cursor   int
	bitPhase int
}

// NewEncoder returns an Encoder that frames msg.  The slice is not copied;
// the caller must not mutate it while the transmission is in flight.
func NewEncoder(msg []byte) *Encoder {
	return &Encoder{source: msg}
}

// NextBit returns the next line bit to modulate, or the idle bit (1) once
// the whole message has been framed.  The boundary is strict: framing stops
// after source[len(source)-1]; no trailing byte beyond the message is ever
// emitted.
func (e *Encoder) NextBit() int {
	if e.cursor >= len(e.source) {
		return idleBit
	}

	var bit int
	switch e.bitPhase {
	case 0:
		bit = startBit
	case BitsPerFrame - 1:
		bit = stopBit
	default:
		if e.source[e.cursor]&(1<<(e.bitPhase-1)) != 0 {
			bit = 1
		} else {
			bit = 0
		}
	}

	e.bitPhase++
	if e.bitPhase == BitsPerFrame {
		e.bitPhase = 0
		e.cursor++
	}

	return bit
}

// Done reports whether every byte of the message has been fully framed.
func (e *Encoder) Done() bool {
	return e.cursor >= len(e.source)
}

// Remaining returns the number of bytes not yet fully framed.
func (e *Encoder) Remaining() int {
	return len(e.source) - e.cursor
}
