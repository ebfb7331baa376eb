package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nickysemenza/gola"
	"github.com/robmorgan/stagehand/config"
	"github.com/robmorgan/stagehand/console"
	"github.com/robmorgan/stagehand/cuelist"
	"github.com/robmorgan/stagehand/effect"
	"github.com/robmorgan/stagehand/engine"
	"github.com/robmorgan/stagehand/fixture"
	"github.com/robmorgan/stagehand/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command-line configuration
var flags struct {
	config   string
	show     string
	logLevel string

	output   string
	port     string
	headless bool
}

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "A cue-based theatre lighting console",
	Long: `Stagehand runs a show as a chain of lighting cues. The operator steps
through the chain, splices in blackout, half-lights or interrupt cues, and
every change is sent to a 24 channel dimmer bank.`,
	SilenceUsage: true,
	RunE:         runShow,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the show with the operator console",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "",
		"YAML config file (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVarP(&flags.show, "show", "s", "",
		"Show file, overrides the config")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"Log level, overrides the config")

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVarP(&flags.output, "output", "o", "",
			"Frame output: none, serial or ola")
		cmd.Flags().StringVarP(&flags.port, "port", "p", "",
			"Serial port of the dimmer bank")
		cmd.Flags().BoolVar(&flags.headless, "headless", false,
			"Run without the operator console until interrupted")
	}

	rootCmd.AddCommand(runCmd, inspectCmd, frameCmd, dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return cfg, err
	}
	if flags.show != "" {
		cfg.ShowFile = flags.show
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.output != "" {
		cfg.Output.Type = flags.output
	}
	if flags.port != "" {
		cfg.Output.Port = flags.port
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openWriter connects to the configured frame output.
func openWriter(out config.OutputConfig) (fixture.FrameWriter, error) {
	log := logger.GetProjectLogger()
	switch out.Type {
	case config.OutputSerial:
		log.WithFields(logrus.Fields{"port": out.Port, "baud": out.Baud}).Info("Opening serial port...")
		return fixture.OpenSerial(out.Port, out.Baud)
	case config.OutputOLA:
		log.WithFields(logrus.Fields{"address": out.OLAAddress, "universe": out.Universe}).Info("Connecting to OLA...")
		client, err := gola.New(out.OLAAddress)
		if err != nil {
			return nil, fmt.Errorf("could not connect to OLA: %w", err)
		}
		return fixture.NewOLAWriter(client, out.Universe), nil
	default:
		log.Info("No output configured, frames are discarded")
		return &fixture.NullWriter{}, nil
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.GetProjectLogger()

	store := cuelist.NewStore(cfg.ShowFile)
	show, err := store.Load()
	if err != nil {
		return err
	}
	curve, err := effect.Curve(cfg.Fade.Curve)
	if err != nil {
		return err
	}

	writer, err := openWriter(cfg.Output)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := engine.Options{
		Interval:     cfg.TickInterval(),
		Patch:        cfg.Patch,
		Store:        store,
		FadeCurve:    curve,
		FadeDuration: cfg.Fade.Duration,
	}

	var feed <-chan engine.Status
	if !flags.headless {
		// the console owns the terminal from here on
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		logger.SetOutput(logFile)
		defer logger.SetOutput(os.Stderr)

		feed, opts.OnStatus = console.Feed()
	}

	loop := engine.New(show, opts)

	wg := sync.WaitGroup{}
	wg.Add(2)
	go fixture.SendFrameWorker(ctx, writer, loop.Slot(), &wg)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	if flags.headless {
		log.WithFields(logrus.Fields{"show": cfg.ShowFile, "pages": show.Len()}).Info("Running headless, press ctrl+c to stop")
		<-ctx.Done()
	} else if err := console.Run(ctx, loop, feed, cfg.Patch); err != nil {
		log.WithFields(logrus.Fields{"error": err}).Error("console failed")
	}

	cancel()
	wg.Wait()
	log.Info("shutting down stagehand")
	return nil
}
