// Package main provides the radiotray entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/app/hotkey"
	"github.com/osa030/radiotray/internal/app/radio"
	"github.com/osa030/radiotray/internal/domain/station"
	"github.com/osa030/radiotray/internal/infra/config"
	"github.com/osa030/radiotray/internal/infra/console"
	"github.com/osa030/radiotray/internal/infra/logger"
)

var (
	app        = kingpin.New("radiotray", "Internet radio player")
	configPath = app.Flag("config", "Path to config file").Default("radiotray.yaml").Envar("RADIOTRAY_CONFIG").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// run command (default)
	runCmd      = app.Command("run", "Play radio, reading commands from stdin (default)").Default()
	runStation  = runCmd.Flag("station", "Station number (from 1) to select on start").Int()
	runAutoplay = runCmd.Flag("autoplay", "Start playing the selected station").Bool()

	// init command
	initCmd   = app.Command("init", "Write a default config file")
	initForce = initCmd.Flag("force", "Overwrite an existing config file").Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle init command
	if command == initCmd.FullCommand() {
		if err := writeDefaultConfig(*configPath, *initForce); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *configPath)
		return
	}

	// Station commands edit the config file and exit
	if command != runCmd.FullCommand() {
		if err := runStationCommand(command, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger, command-line flags take precedence over the config
	loggerConfig := logger.Config{
		Output: cfg.Logging.Output,
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	zlog.Info().Msgf("Loaded config from %s: stations=%d", *configPath, len(cfg.Stations))

	if err := run(cfg, *configPath); err != nil {
		zlog.Error().Msgf("Radio error: %v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// run executes the player. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, path string) error {
	backend, err := radio.NewBackendFromConfig(cfg)
	if err != nil {
		return err
	}

	store := radio.StationStoreFunc(func(list station.List) error {
		return config.SaveStations(path, list)
	})
	radioMgr := radio.NewManager(cfg, backend, store, nil)
	defer func() {
		if err := radioMgr.Close(); err != nil {
			zlog.Error().Msgf("Failed to close radio: %v", err)
		}
	}()

	// Commands are read from stdin
	term := console.New(os.Stdin, os.Stdout)
	if err := radioMgr.Bind(term); err != nil {
		zlog.Warn().Msgf("Some shortcuts could not be registered: %v", err)
	}
	term.OnStation(radioMgr.SelectStation)
	term.OnList(radioMgr.StationLines)

	// Pick up station list edits made while running
	watcher, err := config.Watch(path, config.DefaultWatchDelay, func(c *config.Config) {
		radioMgr.ReloadStations(c.Stations)
	})
	if err != nil {
		zlog.Warn().Msgf("Config file is not watched: %v", err)
	} else {
		defer watcher.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := radioMgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start radio")
	}

	if *runStation > 0 {
		if err := radioMgr.SelectStation(*runStation - 1); err != nil {
			zlog.Error().Msgf("Failed to select station %d: %v", *runStation, err)
		} else if *runAutoplay {
			if err := radioMgr.Dispatch(hotkey.CommandTogglePlayPause); err != nil {
				zlog.Error().Msgf("Failed to start playing: %v", err)
			}
		}
	}

	go func() {
		if err := term.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error().Msgf("Console stopped: %v", err)
		}
	}()

	<-radioMgr.Done()
	zlog.Info().Msg("Radio stopped")
	return nil
}

// writeDefaultConfig writes the default configuration to path.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Newf("%s already exists (use --force to overwrite)", path)
	}
	return config.Save(path, config.Default())
}
