package frame

import (
	"github.com/rs/zerolog"
)

// ByteSink receives decoded bytes, or negative status codes on the same
// path.  *Decoder satisfies it.
type ByteSink interface {
	AcceptBit(v int) error
}

const (
	huntingStart = iota
	dataBits
	stopBits
)

// Deframer recovers bytes from a stream of 8N1 line bits.  It hunts for a
// start bit while the line idles at 1, gathers the eight data bits LSB
// first, and checks the stop bit before handing the byte to the sink.  A
// frame whose stop bit reads 0 is discarded and counted as a framing error.
type Deframer struct {
	sink          ByteSink
	state         int
	acc           int
	bitCount      int
	framingErrors int
	logger        zerolog.Logger
}

// NewDeframer returns a Deframer delivering recovered bytes to sink.
func NewDeframer(sink ByteSink, logger zerolog.Logger) *Deframer {
	return &Deframer{sink: sink, logger: logger}
}

// PushBit consumes one line bit.  Any nonzero bit is treated as 1.
func (d *Deframer) PushBit(bit int) error {
	if bit != 0 {
		bit = 1
	}

	switch d.state {
	case huntingStart:
		if bit == startBit {
			d.state = dataBits
			d.acc = 0
			d.bitCount = 0
		}
	case dataBits:
		if bit != 0 {
			d.acc |= 1 << d.bitCount
		}
		d.bitCount++
		if d.bitCount == 8 {
			d.state = stopBits
		}
	case stopBits:
		d.state = huntingStart
		if bit != stopBit {
			d.framingErrors++
			d.logger.Debug().Int("byte", d.acc).Msg("bad stop bit, frame dropped")
			return nil
		}
		return d.sink.AcceptBit(d.acc)
	}

	return nil
}

// Receive consumes a buffer of line bits, one bit per byte, no packing.
// It stops at the first sink error.
func (d *Deframer) Receive(bits []byte) error {
	for _, b := range bits {
		if err := d.PushBit(int(b)); err != nil {
			return err
		}
	}
	return nil
}

// FramingErrors returns the number of frames dropped for a bad stop bit.
func (d *Deframer) FramingErrors() int {
	return d.framingErrors
}
