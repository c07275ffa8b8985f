package frame

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the receive buffer size used when the caller does not
// pick one.  64 KiB is far beyond any message a Bell-103 class link will
// deliver in a single call.
const DefaultCapacity = 64 * 1024

// ErrBufferOverflow is returned when a decoded byte would not fit in the
// destination buffer.  The reception is marked ended; no byte is ever
// written past the configured capacity.
var ErrBufferOverflow = errors.New("receive buffer overflow")

// Decoder accumulates decoded bytes from a demodulator and tracks the
// carrier state of the reception.  The demodulator delivers whole bytes
// (start/stop bits already stripped) through AcceptBit; negative values on
// the same path are status codes.  A Decoder serves a single reception and
// must not be shared across concurrent sessions.
type Decoder struct {
	dest              []byte
	stopOnCarrierLoss bool
	state             CarrierState
	endOfStream       bool
	overflowed        bool
	carrierUps        int
	carrierDowns      int
	logger            zerolog.Logger
}

// NewDecoder returns a Decoder writing into a fresh buffer of the given
// capacity.  When stopOnCarrierLoss is set, the first carrier-down status
// ends the stream; otherwise reception continues until the driving loop
// stops on its own (hangup).
func NewDecoder(capacity int, stopOnCarrierLoss bool, logger zerolog.Logger) *Decoder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Decoder{
		dest:              make([]byte, 0, capacity),
		stopOnCarrierLoss: stopOnCarrierLoss,
		logger:            logger,
	}
}

// AcceptBit is the combined data/status sink handed to the demodulator.
// Negative values are routed to Update as status codes and write nothing.
// Anything else is masked to one byte and appended to the destination.
func (d *Decoder) AcceptBit(v int) error {
	if v < 0 {
		d.Update(Status(v))
		return nil
	}

	if d.overflowed {
		return ErrBufferOverflow
	}
	if d.endOfStream {
		// Bits demodulated from the same audio block that carried the
		// terminal status are dropped, not failed.
		d.logger.Debug().Int("byte", v&0xff).Msg("byte after end of stream dropped")
		return nil
	}
	if len(d.dest) == cap(d.dest) {
		d.overflowed = true
		d.endOfStream = true
		d.state = StreamEnded
		return fmt.Errorf("%w: capacity %d", ErrBufferOverflow, cap(d.dest))
	}

	d.dest = append(d.dest, byte(v&0xff))
	return nil
}

// Update handles a modem status transition.  Every status is logged; only
// carrier transitions affect the reception state.
func (d *Decoder) Update(s Status) {
	d.logger.Info().Str("status", s.String()).Int("code", int(s)).Msg("rx status")

	if d.state == StreamEnded {
		return
	}

	switch s {
	case StatusCarrierUp:
		d.carrierUps++
		d.state = CarrierPresent
	case StatusCarrierDown:
		d.carrierDowns++
		if d.stopOnCarrierLoss {
			d.state = StreamEnded
			d.endOfStream = true
		} else {
			d.state = CarrierLost
		}
	}
}

// EndOfStream reports whether the reception has terminated.  The driving
// loop polls this after every processed audio block.
func (d *Decoder) EndOfStream() bool {
	return d.endOfStream
}

// Overflowed reports whether the reception ended because the destination
// buffer filled up.
func (d *Decoder) Overflowed() bool {
	return d.overflowed
}

// State returns the current carrier state.
func (d *Decoder) State() CarrierState {
	return d.state
}

// CarrierTransitions returns the number of carrier up and down events seen.
func (d *Decoder) CarrierTransitions() (ups, downs int) {
	return d.carrierUps, d.carrierDowns
}

// Bytes returns the decoded payload so far.  The slice aliases the
// decoder's buffer and stays valid for the life of the decoder.
func (d *Decoder) Bytes() []byte {
	return d.dest
}

// Message returns the decoded payload as text, cut at the first NUL if one
// is present.
func (d *Decoder) Message() string {
	for i, b := range d.dest {
		if b == 0 {
			return string(d.dest[:i])
		}
	}
	return string(d.dest)
}
