package main

import (
	"context"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"
	"github.com/nickysemenza/gola"
	"github.com/robmorgan/beatkeeper/assets"
	"github.com/robmorgan/beatkeeper/audio"
	"github.com/robmorgan/beatkeeper/config"
	"github.com/robmorgan/beatkeeper/fixture"
	"github.com/robmorgan/beatkeeper/logger"
	"github.com/robmorgan/beatkeeper/rhythm"
	"github.com/robmorgan/beatkeeper/tui"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const silentRenderTick = 10 * time.Millisecond

type options struct {
	configPath string
	debug      bool
	headless   bool
	logFile    string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.headless, "headless", false, "start playing straight away and log beats instead of showing the UI")
	flag.StringVar(&opts.logFile, "log-file", "beatkeeper.log", "where logs go while the UI owns the terminal")
	flag.Parse()

	if err := Run(context.Background(), opts); err != nil {
		logger.GetProjectLogger().Fatalf("beatkeeper exited with an error: %v", err)
	}
}

// Run starts the metronome and blocks until the user quits
func Run(ctx context.Context, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// initialize the logger
	if opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if !opts.headless {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger.SetOutput(f)
	}
	logger := logger.GetProjectLogger()

	wg := sync.WaitGroup{}

	// initialize the config
	logger.Info("Initializing config...")
	cfg := config.NewMetronomeConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// initialize the audio engine
	logger.Info("Initializing audio...")
	engine := audio.NewEngine(beep.SampleRate(cfg.Audio.SampleRate), cfg.Volume)
	if err := engine.Open(cfg.Audio.BufferSize); err != nil {
		logger.Warnf("could not open audio output: %v", err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.RunSilent(ctx, clock.RealClock{}, silentRenderTick)
		}()
	} else {
		defer engine.Close()
	}

	var assetFS fs.FS = assets.FS
	if cfg.Audio.AssetDir != "" {
		assetFS = os.DirFS(cfg.Audio.AssetDir)
	}
	loader := audio.NewLoader(assetFS, engine.SampleRate())

	metronome := rhythm.NewMetronome(cfg, clock.RealClock{}, engine, loader)
	defer metronome.Close()

	// configure OLA for the beat light
	if cfg.BeatLight.Enabled {
		startBeatLight(ctx, cfg.BeatLight, metronome, &wg)
	}

	beats, unsubscribe := metronome.Subscribe(16)
	defer unsubscribe()

	var err error
	if opts.headless {
		runHeadless(metronome, beats)
	} else {
		_, err = tea.NewProgram(tui.New(metronome, beats, clock.RealClock{})).Run()
	}

	logger.Info("shutting down beatkeeper")
	metronome.Close()
	cancel()
	wg.Wait()
	return err
}

func startBeatLight(ctx context.Context, cfg config.BeatLightConfig, metronome *rhythm.Metronome, wg *sync.WaitGroup) {
	logger := logger.GetProjectLogger()

	light, err := fixture.NewBeatLight(cfg, clock.RealClock{})
	if err != nil {
		logger.Errorf("could not patch beat light: %v", err)
		return
	}

	logger.Info("Connecting to OLA...")
	client, err := gola.New(cfg.OLAAddress)
	if err != nil {
		logger.Errorf("could not connect to OLA: %v", err)
		return
	}

	beats, unsubscribe := metronome.Subscribe(16)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		light.Watch(ctx, beats)
	}()
	go fixture.SendDMXWorker(ctx, clock.RealClock{}, client, cfg.Refresh, light, wg)
}

// runHeadless plays until CTRL+C, logging every beat.
func runHeadless(metronome *rhythm.Metronome, beats <-chan rhythm.Beat) {
	logger := logger.GetProjectLogger()

	// handle CTRL+C interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	defer signal.Stop(quit)

	metronome.Start(nil)
	for {
		select {
		case <-quit:
			return
		case b := <-beats:
			logger.WithFields(logrus.Fields{
				"beat":   b.BeatIndex,
				"bar":    b.Bar,
				"accent": b.Accent,
			}).Info("beat")
		}
	}
}
