package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-soundboard/internal/audio"
	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"github.com/PixPMusic/gopher-soundboard/internal/controller"
	"github.com/PixPMusic/gopher-soundboard/internal/engine"
	"github.com/PixPMusic/gopher-soundboard/internal/logging"
	"github.com/PixPMusic/gopher-soundboard/internal/midi"
	"github.com/PixPMusic/gopher-soundboard/internal/sound"
	"github.com/PixPMusic/gopher-soundboard/internal/startup"
	"github.com/PixPMusic/gopher-soundboard/internal/tray"
)

type flags struct {
	bank            string
	controller      string
	headless        bool
	debug           bool
	startup         string
	listPorts       bool
	writeController bool
	normalize       bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.bank, "bank", "", "sound bank file (remembered for the next start)")
	flag.StringVar(&f.controller, "controller", "", "controller mapping file (default: config dir)")
	flag.BoolVar(&f.headless, "headless", false, "run without the system tray until interrupted")
	flag.BoolVar(&f.debug, "debug", false, "debug logging, also written to debug.log in the config dir")
	flag.StringVar(&f.startup, "startup", "", "enable or disable launch at login, then exit")
	flag.BoolVar(&f.listPorts, "list-ports", false, "list MIDI ports and exit")
	flag.BoolVar(&f.writeController, "write-controller", false, "write the controller mapping file if missing and exit")
	flag.BoolVar(&f.normalize, "normalize", false, "fill in defaults and ids in the sound bank file and exit")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	log, err := newLogger(f.debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(f, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("soundboard stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	opts := logging.Options{Debug: debug}
	if dir, err := config.Dir(); err == nil {
		opts.File = filepath.Join(dir, "debug.log")
	}
	return logging.New(opts)
}

func run(f flags, log *zap.Logger) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	midiManager := midi.NewManager()
	defer midiManager.Close()

	switch {
	case f.listPorts:
		printPorts(midiManager)
		return nil
	case f.writeController:
		return writeController(f.controller, log)
	case f.startup != "":
		return applyStartup(f.startup, settings, log)
	}

	if f.bank != "" && f.bank != settings.SoundBank {
		abs, err := filepath.Abs(f.bank)
		if err != nil {
			return err
		}
		settings.SoundBank = abs
		if err := settings.Save(); err != nil {
			log.Warn("could not remember sound bank", zap.Error(err))
		}
	}
	bankPath := settings.SoundBank

	bank, err := config.LoadSoundConfig(bankPath)
	if err != nil {
		return fmt.Errorf("load sound bank: %w", err)
	}
	if f.normalize {
		if bankPath == "" {
			return fmt.Errorf("no sound bank to normalize")
		}
		return bank.Save(bankPath)
	}

	ctrlCfg, err := config.LoadControllerConfig(f.controller)
	if err != nil {
		return fmt.Errorf("load controller config: %w", err)
	}

	player, err := audio.NewPlayer(log.Named("audio"))
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	defer player.Close()

	port := midiManager.Open(ctrlCfg.Device.InPort, ctrlCfg.Device.OutPort, log.Named("midi"))
	defer port.Close()

	// Absent directions stay nil interfaces so the translator sees them as missing
	var (
		in  controller.Input
		out controller.Output
	)
	hasIn, hasOut := port.Available()
	if hasIn {
		in = port
	}
	if hasOut {
		out = port
	}

	translator := controller.NewTranslator(ctrlCfg, in, out, log.Named("controller"))
	sounds := sound.NewManager(bank, player, log.Named("sound"))
	eng := engine.New(translator, sounds, engine.Options{
		PollInterval:      settings.PollInterval,
		HeartbeatInterval: settings.HeartbeatInterval,
	}, log.Named("engine"))

	reload := func() {
		cfg, err := config.LoadSoundConfig(bankPath)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		eng.RequestReload(cfg)
	}

	if f.headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		for _, msg := range transportWarnings(hasIn, hasOut) {
			log.Warn(msg)
		}
		go watchBank(ctx, bankPath, eng, log)
		return eng.Run(ctx)
	}

	return runTray(settings, eng, reload, transportWarnings(hasIn, hasOut), bankPath, log)
}

// runTray runs the engine next to the tray UI. Whichever finishes first
// ends the other.
func runTray(settings *config.Settings, eng *engine.Engine, reload func(), warnings []string, bankPath string, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("com.pixpmusic.gophersoundboard")
	entry, err := startup.CurrentEntry()
	if err != nil {
		log.Warn("launch at login unavailable", zap.Error(err))
	}
	if !tray.Setup(fyneApp, settings, entry, tray.Callbacks{
		OnReload:  reload,
		OnStopAll: eng.RequestStop,
		OnQuit:    cancel,
	}, log.Named("tray")) {
		log.Warn("no system tray available, use -headless")
	}

	for _, msg := range warnings {
		log.Warn(msg)
		tray.Notify(fyneApp, msg)
	}

	go watchBank(ctx, bankPath, eng, log)

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx)
		fyne.Do(fyneApp.Quit)
	}()

	fyneApp.Run()
	cancel()
	return <-done
}

func watchBank(ctx context.Context, path string, eng *engine.Engine, log *zap.Logger) {
	if path == "" {
		return
	}
	if err := engine.WatchBank(ctx, path, log.Named("watch"), eng.RequestReload); err != nil {
		log.Warn("sound bank watcher stopped", zap.Error(err))
	}
}

func transportWarnings(hasIn, hasOut bool) []string {
	var msgs []string
	if !hasIn {
		msgs = append(msgs, "MIDI input unavailable")
	}
	if !hasOut {
		msgs = append(msgs, "MIDI output unavailable, colored keys are not available")
	}
	return msgs
}

func printPorts(m *midi.Manager) {
	fmt.Println("Input ports:")
	for _, name := range m.ListInPorts() {
		fmt.Println("  " + name)
	}
	fmt.Println("Output ports:")
	for _, name := range m.ListOutPorts() {
		fmt.Println("  " + name)
	}
}

func writeController(path string, log *zap.Logger) error {
	if path == "" {
		p, err := config.ControllerPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		log.Info("controller config already exists", zap.String("file", path))
		return nil
	}
	if err := config.DefaultControllerConfig().Save(path); err != nil {
		return fmt.Errorf("write controller config: %w", err)
	}
	log.Info("wrote default controller config", zap.String("file", path))
	return nil
}

func applyStartup(mode string, settings *config.Settings, log *zap.Logger) error {
	var enabled bool
	switch mode {
	case "enable":
		enabled = true
	case "disable":
	default:
		return fmt.Errorf("-startup must be enable or disable, got %q", mode)
	}

	entry, err := startup.CurrentEntry()
	if err != nil {
		return err
	}
	if err := startup.Apply(enabled, entry); err != nil {
		return fmt.Errorf("launch at login: %w", err)
	}
	settings.OpenAtStartup = enabled
	log.Info("launch at login updated", zap.Bool("enabled", enabled))
	return settings.Save()
}
