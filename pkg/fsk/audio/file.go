package audio

import (
	"context"
	"io"
	"os"
	"time"
)

// FileChannel plays received audio out of a raw PCM file at a paced tick
// and records transmitted audio into another.  Either side may be absent:
// a write-only channel reads silence forever, a read-only channel discards
// writes.  Samples are 16-bit little-endian signed linear.
type FileChannel struct {
	readFile  *os.File
	writeFile *os.File
	blockLen  int
	tick      *time.Ticker
}

// NewFileChannel opens readPath for playback and writePath for recording.
// Empty paths disable the respective side.  timeBetween paces ReadBlock to
// roughly real time.
func NewFileChannel(readPath, writePath string, blockLen int, timeBetween time.Duration) (*FileChannel, error) {
	if blockLen <= 0 {
		blockLen = DefaultBlockLen
	}
	if timeBetween <= 0 {
		timeBetween = 20 * time.Millisecond
	}

	f := &FileChannel{
		blockLen: blockLen,
		tick:     time.NewTicker(timeBetween),
	}

	if readPath != "" {
		rf, err := os.Open(readPath)
		if err != nil {
			return nil, err
		}
		f.readFile = rf
	}
	if writePath != "" {
		wf, err := os.Create(writePath)
		if err != nil {
			if f.readFile != nil {
				f.readFile.Close()
			}
			return nil, err
		}
		f.writeFile = wf
	}

	return f, nil
}

func (f *FileChannel) ReadBlock(ctx context.Context) (Block, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.tick.C:
	}

	if f.readFile == nil {
		return Silence(f.blockLen), nil
	}

	buf := make([]byte, f.blockLen*2)
	n, err := io.ReadFull(f.readFile, buf)
	if err == io.EOF {
		return nil, ErrHangup
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	return bytesToBlock(buf[:n]), nil
}

func (f *FileChannel) WriteBlock(ctx context.Context, b Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.writeFile == nil {
		return nil
	}
	_, err := f.writeFile.Write(blockToBytes(b))
	return err
}

func (f *FileChannel) Close() error {
	f.tick.Stop()
	var err error
	if f.readFile != nil {
		err = f.readFile.Close()
	}
	if f.writeFile != nil {
		if werr := f.writeFile.Close(); err == nil {
			err = werr
		}
	}
	return err
}
