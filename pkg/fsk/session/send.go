package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/softmodem/gofsk/pkg/fsk/audio"
	"github.com/softmodem/gofsk/pkg/fsk/frame"
	"github.com/softmodem/gofsk/pkg/fsk/modem"
	"github.com/softmodem/gofsk/pkg/util"
)

// TransmitterFactory builds the modulating side for one transmission.  The
// session owns the framing; the factory supplies whatever puts bits on the
// line.
type TransmitterFactory func(src modem.BitSource) modem.Transmitter

// ReceiverFactory builds the demodulating side for one reception.
type ReceiverFactory func(sink modem.ByteSink) modem.Receiver

// Config carries the knobs shared by send and receive sessions.  Zero
// values fall back to sane defaults.
type Config struct {
	BlockLen int             // samples per audio block, default 160
	Tick     time.Duration   // pacing between blocks, 0 = as fast as the channel allows
	Capacity int             // receive buffer capacity, default 64 KiB
	Store    VarStore        // destination for decoded text, default in-memory
	Metrics  api.WriteAPI    // metrics sink, discarded when nil
	Logger   *zerolog.Logger // default package logger
}

func (c *Config) normalize() {
	if c.BlockLen <= 0 {
		c.BlockLen = audio.DefaultBlockLen
	}
	if c.Capacity <= 0 {
		c.Capacity = frame.DefaultCapacity
	}
	if c.Store == nil {
		c.Store = NewMemStore()
	}
	if c.Metrics == nil {
		c.Metrics = &util.MockWriteAPI{}
	}
	if c.Logger == nil {
		c.Logger = &log.Logger
	}
}

// Sender pumps one framed message through the modem onto an audio channel.
type Sender struct {
	ch    audio.Channel
	newTx TransmitterFactory
	cfg   Config
	stats Stats
}

func NewSender(ch audio.Channel, newTx TransmitterFactory, cfg Config) *Sender {
	cfg.normalize()
	return &Sender{ch: ch, newTx: newTx, cfg: cfg}
}

// Send frames msg and writes modulated blocks until the whole message is on
// the wire, then one block of silence so the far end sees the carrier drop.
// A hangup mid-send abandons the transmission.
func (s *Sender) Send(ctx context.Context, msg string) error {
	if msg == "" {
		return fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	if s.ch == nil {
		return fmt.Errorf("%w: no audio channel", ErrChannelUnavailable)
	}

	enc := frame.NewEncoder([]byte(msg))
	tx := s.newTx(enc)
	block := make(audio.Block, s.cfg.BlockLen)

	start := time.Now()
	s.stats = Stats{Direction: "send", StartedAt: start}
	result := "completed"

	var tick *time.Ticker
	if s.cfg.Tick > 0 {
		tick = time.NewTicker(s.cfg.Tick)
		defer tick.Stop()
	}

	var err error
	for !enc.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-tick.C:
			}
		} else {
			err = ctx.Err()
		}
		if err != nil {
			result = "canceled"
			break
		}

		tx.Generate(block)
		if werr := s.ch.WriteBlock(ctx, block); werr != nil {
			err = fmt.Errorf("transmission abandoned: %w", werr)
			result = "disconnected"
			s.cfg.Logger.Warn().Err(werr).Msg("hangup during send")
			break
		}
		s.stats.Blocks++
	}

	if err == nil {
		// Trailing silence, so the far end sees carrier loss promptly.
		if werr := s.ch.WriteBlock(ctx, audio.Silence(s.cfg.BlockLen)); werr != nil && !errors.Is(werr, audio.ErrHangup) {
			err = werr
			result = "write failed"
		}
		s.stats.Bytes = len(msg)
		s.cfg.Logger.Info().Int("bytes", len(msg)).Int("blocks", s.stats.Blocks).Msg("send completed")
	}

	s.stats.Duration = time.Since(start)
	s.stats.Result = result

	go s.cfg.Metrics.WritePoint(influxdb2.NewPoint("fsk.session",
		map[string]string{
			"direction": "send",
			"result":    result,
		},
		map[string]interface{}{
			"blocks":      s.stats.Blocks,
			"bytes":       s.stats.Bytes,
			"duration_us": s.stats.Duration.Microseconds(),
		}, start))

	return err
}

// Stats returns a snapshot of the last Send call.
func (s *Sender) Stats() Stats {
	return s.stats
}
