package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gordonklaus/portaudio"
	"golang.org/x/sync/errgroup"

	"github.com/whyrusleeping/wavesynth"
	"github.com/whyrusleeping/wavesynth/analysis"
	"github.com/whyrusleeping/wavesynth/config"
	"github.com/whyrusleeping/wavesynth/wavfile"
)

const usage = `Usage: %s [flags] [command] [args]

Commands:
  play              play from a MIDI input device (default)
  test              play an arpeggio through the audio device
  console           type notes and settings at a prompt
  draw              open a scope window, play notes with the keyboard
  render out.wav    render a short phrase to a WAV file
  analyze in.wav    print the fundamental and harmonics of a recording
  devices           list MIDI input devices

Flags:
`

func main() {
	configFile := flag.String("config", "wavesynth.json", "Path to config, created with defaults if not found.")
	device := flag.Int("device", -1, "MIDI input device id; asks when negative.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd := "play"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "play", "test", "console", "draw", "render":
	case "devices":
		if err := listDevices(); err != nil {
			log.Fatalf("can't list devices: %v", err)
		}
		return
	case "analyze":
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		if err := analyze(flag.Arg(1)); err != nil {
			log.Fatal(err)
		}
		return
	default:
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("can't read config: %v because: %v", *configFile, err)
	}

	engine, rec, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("can't build engine: %v", err)
	}

	if cmd == "render" {
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		if err := render(cfg, engine, flag.Arg(1), flag.Args()[2:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stop, err := startBackend(cfg, engine)
	if err != nil {
		log.Fatalf("can't start %s backend: %v", cfg.Backend, err)
	}
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if cfg.WatchConfig {
		g.Go(func() error {
			return watchEnvelope(ctx, *configFile, engine)
		})
	}

	switch cmd {
	case "play":
		g.Go(func() error {
			return playMidi(ctx, engine, *device)
		})
	case "test":
		arp := &wavesynth.Arp{
			Notes:    []uint8{60, 64, 67, 72, 67, 64},
			Velocity: 100,
			Duration: wavesynth.StepDuration(120, 8),
			Target:   engine,
		}
		g.Go(func() error {
			return arp.Run(ctx)
		})
	case "console":
		g.Go(func() error {
			defer cancel()
			return runConsole(ctx, engine)
		})
	case "draw":
		// sdl wants the main goroutine
		if err := draw(ctx, engine, rec); err != nil {
			log.Printf("draw: %v", err)
		}
		cancel()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	fmt.Println("exiting")
}

func buildTable(cfg *config.Config) (*wavesynth.Wavetable, error) {
	var samples []float32
	var err error
	switch {
	case cfg.Table.Path != "" && cfg.Table.Extract:
		var sr int
		samples, sr, err = wavfile.Load(cfg.Table.Path)
		if err != nil {
			return nil, err
		}
		samples, err = analysis.ExtractCycle(samples, float64(sr), cfg.Table.Size)
	case cfg.Table.Path != "":
		samples, _, err = wavfile.LoadTable(cfg.Table.Path)
	default:
		samples, err = wavesynth.GenerateShape(cfg.Table.Shape, cfg.Table.Size)
	}
	if err != nil {
		return nil, err
	}
	return wavesynth.NewWavetable(samples)
}

func buildEngine(cfg *config.Config) (*wavesynth.Engine, *wavesynth.Recorder, error) {
	table, err := buildTable(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("can't build wavetable: %w", err)
	}
	sys := cfg.System()
	inst := wavesynth.NewInstrument(sys, table, cfg.Voices, cfg.Envelope.ADSR())
	engine := wavesynth.NewEngine(sys, inst, cfg.QueueSize)
	if f := cfg.HighPass; f.Enabled {
		engine.SetFilter(wavesynth.NewHighPass(sys.SampleRate(), f.Cutoff, f.Q))
	}
	if c := cfg.Compressor; c.Enabled {
		engine.SetCompressor(wavesynth.NewCompressor(c.Threshold, c.Ratio, c.Attack, c.Release))
	}
	rec := wavesynth.NewRecorder(4096)
	engine.SetRecorder(rec)
	return engine, rec, nil
}

// startBackend hands the engine to the configured audio device and returns
// a function that shuts the device down.
func startBackend(cfg *config.Config, engine *wavesynth.Engine) (func(), error) {
	sys := cfg.System()
	switch cfg.Backend {
	case "portaudio":
		if err := portaudio.Initialize(); err != nil {
			return nil, fmt.Errorf("can't init portaudio: %w", err)
		}
		// mono out
		stream, err := portaudio.OpenDefaultStream(0, 1, sys.SampleRate(), sys.BufferSize(), engine.Process)
		if err != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("can't open default stream: %w", err)
		}
		if err := stream.Start(); err != nil {
			stream.Close()
			portaudio.Terminate()
			return nil, fmt.Errorf("can't start stream: %w", err)
		}
		return func() {
			// ignore Stop, Close and Terminate errors
			stream.Stop()
			stream.Close()
			portaudio.Terminate()
		}, nil
	default:
		sr := beep.SampleRate(int(sys.SampleRate()))
		if err := speaker.Init(sr, sys.BufferSize()); err != nil {
			return nil, fmt.Errorf("can't init speaker: %w", err)
		}
		speaker.Play(engine)
		return speaker.Close, nil
	}
}

// watchEnvelope applies envelope changes from the config file while
// playing. Other settings need a restart.
func watchEnvelope(ctx context.Context, path string, engine *wavesynth.Engine) error {
	configs := make(chan *config.Config)
	errs := make(chan error)
	if err := config.Watch(path, configs, errs, ctx.Done()); err != nil {
		return fmt.Errorf("can't start watcher: %w", err)
	}
	for {
		select {
		case c := <-configs:
			fmt.Println("new conf")
			engine.SetEnvelope(c.Envelope.ADSR())
		case err := <-errs:
			log.Printf("config error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func analyze(path string) error {
	samples, sr, err := wavfile.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d frames at %dHz\n", path, len(samples), sr)
	fmt.Printf("fundamental: %.2fHz\n", analysis.Fundamental(samples, float64(sr)))
	peaks := analysis.Harmonics(samples)
	for i, p := range peaks[:min(len(peaks), 20)] {
		fmt.Printf("peak %d: %.2fHz (%.3f)\n", i+1, p.Freq*float64(sr), p.Magnitude)
	}
	return nil
}

// render plays each note for half a second, then lets the last one ring
// out, and writes the result to path.
func render(cfg *config.Config, engine *wavesynth.Engine, path string, args []string) error {
	notes := []uint8{60, 64, 67, 72}
	if len(args) > 0 {
		notes = notes[:0]
		for _, a := range args {
			var n uint8
			if _, err := fmt.Sscan(a, &n); err != nil {
				return fmt.Errorf("bad note %q: %w", a, err)
			}
			notes = append(notes, n)
		}
	}

	type cue struct {
		at  int
		msg wavesynth.Message
	}
	sys := cfg.System()
	step := int(sys.SampleRate() / 2)
	var score []cue
	for i, n := range notes {
		score = append(score,
			cue{i * step, wavesynth.NoteOn(0, n, 100)},
			cue{(i + 1) * step, wavesynth.NoteOff(0, n, 0)},
		)
	}
	total := len(notes)*step + int(sys.SampleRate()*float64(cfg.Envelope.ReleaseSeconds)) + step

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out := make([]float32, total)
	for pos := 0; pos < total; pos += sys.BufferSize() {
		for len(score) > 0 && score[0].at <= pos {
			if err := engine.Send(ctx, score[0].msg); err != nil {
				return err
			}
			score = score[1:]
		}
		engine.Process(out[pos:min(pos+sys.BufferSize(), total)])
	}

	if err := wavfile.Write(path, out, int(sys.SampleRate())); err != nil {
		return err
	}
	fmt.Printf("wrote %d samples to %s\n", total, path)
	return nil
}
