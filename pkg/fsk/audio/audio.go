// Package audio moves fixed-size blocks of signed linear PCM between a
// modem session and whatever carries the call audio (an in-memory pipe, a
// raw PCM file, a UDP peer).
package audio

import (
	"context"
	"errors"
)

// DefaultBlockLen is the number of 16-bit samples exchanged per tick.
const DefaultBlockLen = 160

// Block is one scheduling tick's worth of signed linear samples.
type Block []int16

// ErrHangup is returned by ReadBlock when the far end is gone.  A session
// treats it as a disconnect: transmit abandons, receive delivers whatever
// was decoded so far.
var ErrHangup = errors.New("channel hangup")

// Channel is a full-duplex audio stream toward the far end.  Blocks are
// pulled and pushed once per tick by a single session; implementations are
// not required to support concurrent sessions.
type Channel interface {
	// ReadBlock returns the next block of received audio, ErrHangup when
	// the stream is over, or ctx.Err() on cancellation.
	ReadBlock(ctx context.Context) (Block, error)
	// WriteBlock sends one block toward the far end.
	WriteBlock(ctx context.Context, b Block) error
	Close() error
}

// Silence returns an all-zero block of n samples.
func Silence(n int) Block {
	return make(Block, n)
}

// bytesToBlock converts little-endian PCM bytes to samples.  A trailing odd
// byte is dropped.
func bytesToBlock(buf []byte) Block {
	b := make(Block, len(buf)/2)
	for i := range b {
		b[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
	return b
}

// blockToBytes converts samples to little-endian PCM bytes.
func blockToBytes(b Block) []byte {
	buf := make([]byte, len(b)*2)
	for i, s := range b {
		buf[2*i] = byte(uint16(s))
		buf[2*i+1] = byte(uint16(s) >> 8)
	}
	return buf
}
