package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/platform/tui"
	"github.com/vovakirdan/pulsefield/internal/registry"
	"github.com/vovakirdan/pulsefield/internal/storage"
	"github.com/vovakirdan/pulsefield/internal/telemetry"
)

var (
	flagSource string
	flagURL    string
	flagRate   float64
	flagPreset string
	flagConfig string
)

const userAgent = "pulsefield/1.0 (terminal visualizer)"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a feed in the terminal",
	Long: `Open the particle field and drive it from a feed source.

Controls:
  Space      - Fire a pulse by hand
  P          - Pause
  R          - Reseed the field
  H          - Show/hide the HUD
  Ctrl+S     - Save a screenshot
  Q/Ctrl+C   - Quit

Sources:
  wikimedia  - Live Wikipedia edits (default)
  websocket  - Any websocket sending {"magnitude": n} or recentchange JSON
  synthetic  - Generated events, no network needed

Examples:
  pulsefield watch
  pulsefield watch --source synthetic --rate 40
  pulsefield watch --source websocket --url ws://localhost:8080/events
  pulsefield watch --preset noir
  pulsefield watch --config ./my-field.yaml`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagSource, "source", "wikimedia", "Feed source id (see 'pulsefield sources')")
	watchCmd.Flags().StringVar(&flagURL, "url", "", "Feed endpoint (source default if empty)")
	watchCmd.Flags().Float64Var(&flagRate, "rate", 0, "Events per second for the synthetic source")
	watchCmd.Flags().StringVar(&flagPreset, "preset", string(config.PresetClassic), "Built-in preset: classic, noir")
	watchCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
}

// loadConfig resolves --preset and overlays --config on top of it.
func loadConfig() (config.Config, error) {
	if !config.IsPreset(flagPreset) {
		return config.Config{}, fmt.Errorf("unknown preset %q (run 'pulsefield presets' to list them)", flagPreset)
	}
	return config.Load(flagConfig, config.Preset(flagPreset))
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logOut, err := openLogFile(flagLogFile)
	if err != nil {
		return err
	}
	defer logOut.Close()
	logger := newLogger(logOut, "pulsefield")

	if !registry.Exists(flagSource) {
		return fmt.Errorf("unknown source %q (run 'pulsefield sources' to list them)", flagSource)
	}

	src, err := registry.Create(flagSource, feed.Options{
		URL:       flagURL,
		Rate:      flagRate,
		Seed:      flagSeed,
		UserAgent: userAgent,
		Logger:    logger.WithPrefix(flagSource),
	})
	if err != nil {
		return err
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Sessions are optional; the viewer runs without them
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("session storage unavailable", "error", err)
	} else {
		defer store.Close()
	}

	out, err := telemetry.NewOutputManager(flagTelemetryDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		logger.Warn("could not write config", "error", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching", "source", flagSource, "preset", flagPreset)
	return tui.Run(ctx, src, tui.Options{
		Config: cfg,
		Preset: flagPreset,
		Source: flagSource,
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     flagSeed,
		},
		Store:     store,
		Telemetry: out,
		Logger:    logger,
		Mode:      "local",
	})
}
