// Package modem defines the boundary between the byte-framing layer and
// whatever modulates bits onto the audio line.  The DSP itself lives behind
// the Transmitter/Receiver interfaces; this package ships only the contract,
// the classic modem presets as data, and a lossless loopback line.
package modem

import (
	"github.com/softmodem/gofsk/pkg/fsk/audio"
)

// BitSource supplies the next line bit to transmit, one call per symbol
// clock.  It returns 1 (the idle line) once the message is exhausted.
type BitSource interface {
	NextBit() int
}

// ByteSink receives demodulated bytes; negative values on the same path are
// status codes (carrier up/down and friends).
type ByteSink interface {
	AcceptBit(v int) error
}

// Transmitter fills audio blocks by pulling bits from its source.
type Transmitter interface {
	// Generate fills dst with modulated samples and returns the sample count.
	Generate(dst audio.Block) int
}

// Receiver consumes received audio blocks, pushing decoded bytes and status
// transitions into its sink.
type Receiver interface {
	Process(src audio.Block) error
}

// Spec names a classic FSK arrangement: which tone means 0, which means 1,
// and how fast the bits come.  The loopback line keys its timing off
// BaudRate alone; the tone frequencies identify the preset in config and
// log output.
type Spec struct {
	Name     string
	FreqZero int // space frequency, Hz
	FreqOne  int // mark frequency, Hz
	BaudRate int
}

var specs = []Spec{
	{"bell103-ch1", 1070, 1270, 300},
	{"bell103-ch2", 2025, 2225, 300},
	{"bell202", 2200, 1200, 1200},
	{"v21-ch1", 1180, 980, 300},
	{"v21-ch2", 1850, 1650, 300},
}

// DefaultSpec is the answering side of a Bell 103 call.
var DefaultSpec = specs[1]

// SpecByName looks a preset up by its configuration name.
func SpecByName(name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// SamplesPerBit returns how many samples one symbol occupies at the given
// sample rate.
func (s Spec) SamplesPerBit(sampleRate int) int {
	if s.BaudRate <= 0 {
		return 1
	}
	n := sampleRate / s.BaudRate
	if n < 1 {
		n = 1
	}
	return n
}
