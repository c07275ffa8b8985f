package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/softmodem/gofsk/pkg/fsk/audio"
	"github.com/softmodem/gofsk/pkg/fsk/config"
	"github.com/softmodem/gofsk/pkg/fsk/modem"
	"github.com/softmodem/gofsk/pkg/fsk/monitor"
	"github.com/softmodem/gofsk/pkg/fsk/registry"
	"github.com/softmodem/gofsk/pkg/fsk/session"
)

const defaultSampleRate = 8000

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	configFile := flag.String("config", "gofsk.yaml", "YAML config file")

	flag.Parse()
	if configFile == nil {
		flag.Usage()
		os.Exit(1)
	}

	configContents, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading config file")
	}
	var opts config.Config
	if err := yaml.Unmarshal(configContents, &opts); err != nil {
		log.Fatal().Err(err).Msg("error unmarshaling yaml file")
	}

	if opts.SampleRate == 0 {
		opts.SampleRate = defaultSampleRate
	}
	if opts.Modem == "" {
		opts.Modem = modem.DefaultSpec.Name
	}
	spec, ok := modem.SpecByName(opts.Modem)
	if !ok {
		log.Fatal().Str("modem", opts.Modem).Msg("unknown modem preset")
	}
	log.Info().
		Str("modem", spec.Name).
		Int("space_hz", spec.FreqZero).
		Int("mark_hz", spec.FreqOne).
		Int("baud", spec.BaudRate).
		Msg("selected modem preset")

	newTx := func(src modem.BitSource) modem.Transmitter {
		return modem.NewLoopbackTransmitter(spec, opts.SampleRate, src)
	}
	newRx := func(sink modem.ByteSink) modem.Receiver {
		return modem.NewLoopbackReceiver(spec, opts.SampleRate, sink, log.Logger)
	}

	cfg := session.Config{
		BlockLen: opts.BlockLen,
		Tick:     opts.Channel.Tick,
		Capacity: opts.Capacity,
		Store:    session.NewMemStore(),
		Logger:   &log.Logger,
	}

	if opts.InfluxDB.Host != "" {
		cfg.Metrics = influxdb2.NewClient(opts.InfluxDB.Host, "").
			WriteAPI(opts.InfluxDB.Organization, opts.InfluxDB.Bucket)
	}

	var mon *monitor.Server
	if opts.Monitor.Port != 0 {
		mon = monitor.NewServer(opts.Monitor.Port)
	}

	reg := registry.New()
	reg.Register("SendFSK", func(ctx context.Context, arg string) error {
		ch, cerr := openChannel(opts.Channel)
		if cerr != nil {
			return cerr
		}
		defer ch.Close()

		sender := session.NewSender(ch, newTx, cfg)
		err := sender.Send(ctx, arg)
		if mon != nil {
			mon.Record(sender.Stats())
		}
		return err
	})
	reg.Register("ReceiveFSK", func(ctx context.Context, arg string) error {
		variable, options := splitArg(arg)
		ch, cerr := openChannel(opts.Channel)
		if cerr != nil {
			return cerr
		}
		defer ch.Close()

		receiver := session.NewReceiver(ch, newRx, session.ParseFlags(options), cfg)
		msg, err := receiver.Receive(ctx, variable)
		if mon != nil {
			mon.Record(receiver.Stats())
		}
		if err == nil {
			fmt.Printf("%s=%s\n", variable, msg)
		}
		return err
	})

	eg, ctx := errgroup.WithContext(context.Background())
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if mon != nil {
		eg.Go(func() error {
			return mon.Run(ctx)
		})
	}

	eg.Go(func() error {
		defer cancel()
		return dispatch(ctx, reg, &opts, newTx, newRx, cfg, mon)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("exited program")
	}
}

func dispatch(ctx context.Context, reg *registry.Registry, opts *config.Config,
	newTx session.TransmitterFactory, newRx session.ReceiverFactory,
	cfg session.Config, mon *monitor.Server) error {

	switch strings.ToLower(opts.App) {
	case "sendfsk":
		exec, _ := reg.Lookup("SendFSK")
		return exec(ctx, opts.Message)
	case "receivefsk":
		exec, _ := reg.Lookup("ReceiveFSK")
		arg := opts.Variable
		if opts.Options != "" {
			arg += "," + opts.Options
		}
		return exec(ctx, arg)
	case "loopback":
		return loopback(ctx, opts, newTx, newRx, cfg, mon)
	default:
		return fmt.Errorf("unknown app %q", opts.App)
	}
}

// loopback runs a send and a receive session against each other over an
// in-memory pipe.  Handy for exercising the whole path with no far end.
func loopback(ctx context.Context, opts *config.Config,
	newTx session.TransmitterFactory, newRx session.ReceiverFactory,
	cfg session.Config, mon *monitor.Server) error {

	a, b := audio.Pipe()
	defer a.Close()

	variable := opts.Variable
	if variable == "" {
		variable = "MESSAGE"
	}

	sender := session.NewSender(a, newTx, cfg)
	receiver := session.NewReceiver(b, newRx, session.ParseFlags(opts.Options), cfg)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return sender.Send(ctx, opts.Message)
	})

	var msg string
	eg.Go(func() error {
		var err error
		msg, err = receiver.Receive(ctx, variable)
		return err
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	if mon != nil {
		mon.Record(sender.Stats())
		mon.Record(receiver.Stats())
	}

	log.Info().Str("variable", variable).Str("message", msg).Msg("loopback complete")
	return nil
}

// splitArg separates "variable,options" the way the receive application
// expects its argument.
func splitArg(arg string) (variable, options string) {
	if i := strings.IndexByte(arg, ','); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, ""
}

func openChannel(c config.Channel) (audio.Channel, error) {
	switch c.Kind {
	case "file":
		tick := c.Tick
		if tick == 0 {
			tick = 20 * time.Millisecond
		}
		return audio.NewFileChannel(c.ReadPath, c.WritePath, 0, tick)
	case "udp":
		return audio.NewUDPChannel(c.Listen, c.Peer)
	default:
		return nil, fmt.Errorf("unknown channel kind %q", c.Kind)
	}
}
