package modem

import (
	"github.com/rs/zerolog"

	"github.com/softmodem/gofsk/pkg/fsk/audio"
	"github.com/softmodem/gofsk/pkg/fsk/frame"
)

const (
	loopbackAmplitude = 8192
	carrierThreshold  = 1024
)

// LoopbackTransmitter puts line bits on the wire as flat sample levels,
// one level per symbol: mark above zero, space below.  No tones are
// synthesized; the waveform is only meant for a LoopbackReceiver on the
// other end of a clean channel.
type LoopbackTransmitter struct {
	src           BitSource
	samplesPerBit int
	phase         int
	level         int16
}

func NewLoopbackTransmitter(spec Spec, sampleRate int, src BitSource) *LoopbackTransmitter {
	return &LoopbackTransmitter{
		src:           src,
		samplesPerBit: spec.SamplesPerBit(sampleRate),
	}
}

func (t *LoopbackTransmitter) Generate(dst audio.Block) int {
	for i := range dst {
		if t.phase == 0 {
			if t.src.NextBit() != 0 {
				t.level = loopbackAmplitude
			} else {
				t.level = -loopbackAmplitude
			}
		}
		dst[i] = t.level
		t.phase++
		if t.phase == t.samplesPerBit {
			t.phase = 0
		}
	}
	return len(dst)
}

// LoopbackReceiver slices sample signs back into line bits (positive is
// mark) and runs them through an 8N1 deframer into the sink.  Carrier is
// judged by signal energy: a block with no sample above the threshold while
// carrier was up is reported as carrier down, mirroring how a demodulator
// signals loss of line.
type LoopbackReceiver struct {
	sink          ByteSink
	def           *frame.Deframer
	samplesPerBit int
	phase         int
	carrierUp     bool
	logger        zerolog.Logger
}

func NewLoopbackReceiver(spec Spec, sampleRate int, sink ByteSink, logger zerolog.Logger) *LoopbackReceiver {
	return &LoopbackReceiver{
		sink:          sink,
		def:           frame.NewDeframer(sink, logger),
		samplesPerBit: spec.SamplesPerBit(sampleRate),
		logger:        logger,
	}
}

func slice(s int16) int {
	if s >= 0 {
		return 1
	}
	return 0
}

func (r *LoopbackReceiver) Process(src audio.Block) error {
	live := false
	for _, s := range src {
		if s > carrierThreshold || s < -carrierThreshold {
			live = true
			break
		}
	}

	if !live {
		if r.carrierUp {
			r.carrierUp = false
			r.phase = 0
			if err := r.sink.AcceptBit(int(frame.StatusCarrierDown)); err != nil {
				return err
			}
		}
		return nil
	}

	if !r.carrierUp {
		r.carrierUp = true
		if err := r.sink.AcceptBit(int(frame.StatusCarrierUp)); err != nil {
			return err
		}
	}

	for _, s := range src {
		// Sample each symbol once, at the middle of its window.
		if r.phase == r.samplesPerBit/2 {
			if err := r.def.PushBit(slice(s)); err != nil {
				return err
			}
		}
		r.phase++
		if r.phase == r.samplesPerBit {
			r.phase = 0
		}
	}
	return nil
}

// FramingErrors exposes the deframer's count of dropped frames.
func (r *LoopbackReceiver) FramingErrors() int {
	return r.def.FramingErrors()
}
