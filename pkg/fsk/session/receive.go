package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"

	"github.com/softmodem/gofsk/pkg/fsk/audio"
	"github.com/softmodem/gofsk/pkg/fsk/frame"
	"github.com/softmodem/gofsk/pkg/util"
)

// Receiver listens on an audio channel, decodes one message, and delivers
// it to the variable store.  Whatever was decoded is delivered even when
// the session ends abnormally.
type Receiver struct {
	ch    audio.Channel
	newRx ReceiverFactory
	flags Flags
	cfg   Config
	stats Stats
}

func NewReceiver(ch audio.Channel, newRx ReceiverFactory, flags Flags, cfg Config) *Receiver {
	cfg.normalize()
	return &Receiver{ch: ch, newRx: newRx, flags: flags, cfg: cfg}
}

// Receive pumps audio blocks through the demodulator until the stream ends
// (carrier loss under the default flags), the far end hangs up, or the
// receive buffer fills.  The decoded text lands in the store under varName
// and is also returned.
func (r *Receiver) Receive(ctx context.Context, varName string) (string, error) {
	if varName == "" {
		return "", fmt.Errorf("%w: missing variable name", ErrInvalidInput)
	}
	if r.ch == nil {
		return "", fmt.Errorf("%w: no audio channel", ErrChannelUnavailable)
	}

	dec := frame.NewDecoder(r.cfg.Capacity, r.flags.StopOnCarrierLoss, *r.cfg.Logger)
	rx := r.newRx(dec)

	start := time.Now()
	r.stats = Stats{Direction: "receive", StartedAt: start}
	result := "completed"

	// The variable exists from the start, empty until decoded.
	r.cfg.Store.Set(varName, "")

	var err error
	var demodMicros int64
	for {
		if cerr := ctx.Err(); cerr != nil {
			err = cerr
			result = "canceled"
			break
		}

		block, rerr := r.ch.ReadBlock(ctx)
		if rerr != nil {
			if errors.Is(rerr, audio.ErrHangup) {
				r.cfg.Logger.Info().Msg("hangup during receive")
				if r.flags.StopOnCarrierLoss {
					// Carrier loss should have ended this reception;
					// losing the channel first is a disconnect.
					err = rerr
					result = "disconnected"
				} else {
					// Hangup is the expected end under the 'h' flag.
					result = "hangup"
				}
			} else {
				err = rerr
				result = "read failed"
			}
			break
		}
		r.stats.Blocks++

		var perr error
		demodMicros += util.TimeOperationMicroseconds(func() {
			perr = rx.Process(block)
		})
		if perr != nil {
			err = perr
			if errors.Is(perr, frame.ErrBufferOverflow) {
				result = "overflow"
				r.cfg.Logger.Error().Err(perr).Msg("receive buffer full, reception ended")
			} else {
				result = "decode failed"
			}
			break
		}

		if dec.EndOfStream() {
			r.cfg.Logger.Info().Msg("end of stream")
			break
		}

		if r.flags.EmitSilence {
			if werr := r.ch.WriteBlock(ctx, audio.Silence(r.cfg.BlockLen)); werr != nil && !errors.Is(werr, audio.ErrHangup) {
				err = werr
				result = "write failed"
				break
			}
		}
	}

	// Partial data is still delivered.
	msg := dec.Message()
	r.cfg.Store.Set(varName, msg)

	ups, downs := dec.CarrierTransitions()
	r.stats.Bytes = len(dec.Bytes())
	r.stats.CarrierUps = ups
	r.stats.CarrierDowns = downs
	r.stats.Duration = time.Since(start)
	r.stats.Result = result

	r.cfg.Logger.Info().
		Str("variable", varName).
		Int("bytes", r.stats.Bytes).
		Str("result", result).
		Msg("receive finished")

	go r.cfg.Metrics.WritePoint(influxdb2.NewPoint("fsk.session",
		map[string]string{
			"direction": "receive",
			"result":    result,
		},
		map[string]interface{}{
			"blocks":        r.stats.Blocks,
			"bytes":         r.stats.Bytes,
			"carrier_ups":   ups,
			"carrier_downs": downs,
			"demod_us":      demodMicros,
			"duration_us":   r.stats.Duration.Microseconds(),
		}, start))

	return msg, err
}

// Stats returns a snapshot of the last Receive call.
func (r *Receiver) Stats() Stats {
	return r.stats
}
