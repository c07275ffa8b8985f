package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/softmodem/gofsk/pkg/fsk/audio"
	"github.com/softmodem/gofsk/pkg/fsk/frame"
	"github.com/softmodem/gofsk/pkg/fsk/modem"
)

const testSampleRate = 8000

func testFactories() (TransmitterFactory, ReceiverFactory) {
	nop := zerolog.Nop()
	newTx := func(src modem.BitSource) modem.Transmitter {
		return modem.NewLoopbackTransmitter(modem.DefaultSpec, testSampleRate, src)
	}
	newRx := func(sink modem.ByteSink) modem.Receiver {
		return modem.NewLoopbackReceiver(modem.DefaultSpec, testSampleRate, sink, nop)
	}
	return newTx, newRx
}

func nopConfig() Config {
	nop := zerolog.Nop()
	return Config{Logger: &nop}
}

func TestSendReceiveOverPipe(t *testing.T) {
	const msg = "The quick brown fox jumps over the lazy dog"

	a, b := newTestPipe(t)
	newTx, newRx := testFactories()

	store := NewMemStore()
	cfg := nopConfig()
	cfg.Store = store

	sender := NewSender(a, newTx, nopConfig())
	receiver := NewReceiver(b, newRx, DefaultFlags(), cfg)

	var got string
	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		return sender.Send(ctx, msg)
	})
	eg.Go(func() error {
		var err error
		got, err = receiver.Receive(ctx, "MESSAGE")
		return err
	})

	require.NoError(t, eg.Wait())
	assert.Equal(t, msg, got)

	stored, ok := store.Get("MESSAGE")
	require.True(t, ok)
	assert.Equal(t, msg, stored)

	assert.Equal(t, "completed", sender.Stats().Result)
	assert.Equal(t, "completed", receiver.Stats().Result)
	assert.Equal(t, len(msg), receiver.Stats().Bytes)
}

func newTestPipe(t *testing.T) (*audio.PipeChannel, *audio.PipeChannel) {
	t.Helper()
	a, b := audio.Pipe()
	t.Cleanup(func() { a.Close() })
	return a, b
}

func TestReceiveHangupDeliversPartial(t *testing.T) {
	const msg = "HI"

	a, b := audio.Pipe()
	newTx, newRx := testFactories()

	store := NewMemStore()
	cfg := nopConfig()
	cfg.Store = store

	// Put the whole message on the wire, then hang up without ever
	// dropping the carrier cleanly.
	enc := frame.NewEncoder([]byte(msg))
	tx := newTx(enc)
	ctx := context.Background()
	for !enc.Done() {
		block := make(audio.Block, audio.DefaultBlockLen)
		tx.Generate(block)
		require.NoError(t, a.WriteBlock(ctx, block))
	}
	a.Close()

	receiver := NewReceiver(b, newRx, DefaultFlags(), cfg)
	got, err := receiver.Receive(ctx, "MESSAGE")

	// Disconnected, but decoded data is still delivered.
	assert.ErrorIs(t, err, audio.ErrHangup)
	assert.Equal(t, "disconnected", receiver.Stats().Result)
	assert.Equal(t, msg, got)
	stored, _ := store.Get("MESSAGE")
	assert.Equal(t, msg, stored)
}

func TestReceiveHangupIsNormalEndWithHFlag(t *testing.T) {
	const msg = "OK"

	a, b := audio.Pipe()
	newTx, newRx := testFactories()

	enc := frame.NewEncoder([]byte(msg))
	tx := newTx(enc)
	ctx := context.Background()
	for !enc.Done() {
		block := make(audio.Block, audio.DefaultBlockLen)
		tx.Generate(block)
		require.NoError(t, a.WriteBlock(ctx, block))
	}
	a.Close()

	receiver := NewReceiver(b, newRx, ParseFlags("h"), nopConfig())
	got, err := receiver.Receive(ctx, "MESSAGE")

	require.NoError(t, err)
	assert.Equal(t, "hangup", receiver.Stats().Result)
	assert.Equal(t, msg, got)
}

func TestReceiveOverflowDeliversPartial(t *testing.T) {
	const msg = "OVERFLOW!"

	a, b := audio.Pipe()
	newTx, newRx := testFactories()

	store := NewMemStore()
	cfg := nopConfig()
	cfg.Store = store
	cfg.Capacity = 2

	sender := NewSender(a, newTx, nopConfig())
	receiver := NewReceiver(b, newRx, DefaultFlags(), cfg)

	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		sender.Send(ctx, msg) // hangs up under the sender once we stop reading
		return nil
	})

	got, err := receiver.Receive(context.Background(), "MESSAGE")
	assert.ErrorIs(t, err, frame.ErrBufferOverflow)
	assert.Equal(t, "overflow", receiver.Stats().Result)
	assert.Equal(t, msg[:2], got)

	stored, _ := store.Get("MESSAGE")
	assert.Equal(t, msg[:2], stored)

	b.Close()
	require.NoError(t, eg.Wait())
}

func TestSendValidation(t *testing.T) {
	newTx, _ := testFactories()
	a, _ := audio.Pipe()
	defer a.Close()

	s := NewSender(a, newTx, nopConfig())
	if err := s.Send(context.Background(), ""); !assert.ErrorIs(t, err, ErrInvalidInput) {
		t.Fatal(err)
	}

	s = NewSender(nil, newTx, nopConfig())
	err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}

func TestReceiveValidation(t *testing.T) {
	_, newRx := testFactories()
	a, _ := audio.Pipe()
	defer a.Close()

	r := NewReceiver(a, newRx, DefaultFlags(), nopConfig())
	_, err := r.Receive(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	r = NewReceiver(nil, newRx, DefaultFlags(), nopConfig())
	_, err = r.Receive(context.Background(), "MESSAGE")
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}

func TestSendCanceled(t *testing.T) {
	newTx, _ := testFactories()
	a, _ := audio.Pipe()
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := nopConfig()
	cfg.Tick = time.Millisecond
	s := NewSender(a, newTx, cfg)
	err := s.Send(ctx, "never goes out")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "canceled", s.Stats().Result)
}

func TestFileChannelEndToEnd(t *testing.T) {
	const msg = "recorded and played back"

	dir := t.TempDir()
	pcm := filepath.Join(dir, "call.pcm")
	back := filepath.Join(dir, "return.pcm")

	newTx, newRx := testFactories()

	// Record a transmission into a PCM file.
	rec, err := audio.NewFileChannel("", pcm, audio.DefaultBlockLen, time.Millisecond)
	require.NoError(t, err)
	sender := NewSender(rec, newTx, nopConfig())
	require.NoError(t, sender.Send(context.Background(), msg))
	require.NoError(t, rec.Close())

	// Play it back into a receiver that also streams silence ('s' flag).
	play, err := audio.NewFileChannel(pcm, back, audio.DefaultBlockLen, time.Millisecond)
	require.NoError(t, err)
	defer play.Close()

	receiver := NewReceiver(play, newRx, ParseFlags("sh"), nopConfig())
	got, rerr := receiver.Receive(context.Background(), "MESSAGE")
	require.NoError(t, rerr)
	assert.Equal(t, msg, got)

	// The silence stream really went somewhere.
	fi, err := os.Stat(back)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Flags
	}{
		{"default", "", Flags{StopOnCarrierLoss: true}},
		{"hangup", "h", Flags{}},
		{"silence", "s", Flags{StopOnCarrierLoss: true, EmitSilence: true}},
		{"both", "hs", Flags{EmitSilence: true}},
		{"order and repeats", "shh s", Flags{EmitSilence: true}},
		{"unknown ignored", "x7", Flags{StopOnCarrierLoss: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFlags(tt.in); got != tt.want {
				t.Errorf("ParseFlags(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
