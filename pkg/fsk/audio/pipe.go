package audio

import (
	"context"
	"sync"
)

const pipeDepth = 8

// PipeChannel is one end of an in-memory full-duplex audio link.  Closing
// either end hangs up both directions, which makes it a convenient stand-in
// for a real call leg in tests and loopback runs.
type PipeChannel struct {
	in   chan Block
	out  chan Block
	done chan struct{}

	closeDone func()
}

// Pipe returns two connected channel ends.  Whatever one end writes, the
// other reads.
func Pipe() (*PipeChannel, *PipeChannel) {
	ab := make(chan Block, pipeDepth)
	ba := make(chan Block, pipeDepth)
	done := make(chan struct{})

	var once sync.Once
	closeDone := func() { once.Do(func() { close(done) }) }

	a := &PipeChannel{in: ba, out: ab, done: done, closeDone: closeDone}
	b := &PipeChannel{in: ab, out: ba, done: done, closeDone: closeDone}
	return a, b
}

func (p *PipeChannel) ReadBlock(ctx context.Context) (Block, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b := <-p.in:
		return b, nil
	case <-p.done:
		// Drain anything written before the hangup.
		select {
		case b := <-p.in:
			return b, nil
		default:
			return nil, ErrHangup
		}
	}
}

func (p *PipeChannel) WriteBlock(ctx context.Context, b Block) error {
	select {
	case <-p.done:
		return ErrHangup
	default:
	}

	// Callers are free to reuse b for the next block, so queue a copy.
	b = append(Block(nil), b...)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrHangup
	case p.out <- b:
		return nil
	}
}

func (p *PipeChannel) Close() error {
	p.closeDone()
	return nil
}
