package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/platform/tui"
	"github.com/vovakirdan/pulsefield/internal/registry"
	"github.com/vovakirdan/pulsefield/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pulsefield SSH server",
	Long: `Start an SSH server that shows a particle field to every connection.

All viewers share one upstream feed, but each gets its own field,
seeded independently. Session summaries go to the server's database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.pulsefield/host_key

Examples:
  pulsefield serve                            # Listen on :23235, wikimedia feed
  pulsefield serve --ssh :2222                # Listen on port 2222
  pulsefield serve --source synthetic         # No network feed needed
  pulsefield serve --host-key ./my_host_key   # Use specific host key

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23235", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagSource, "source", "wikimedia", "Feed source id (see 'pulsefield sources')")
	serveCmd.Flags().StringVar(&flagURL, "url", "", "Feed endpoint (source default if empty)")
	serveCmd.Flags().Float64Var(&flagRate, "rate", 0, "Events per second for the synthetic source")
	serveCmd.Flags().StringVar(&flagPreset, "preset", string(config.PresetClassic), "Built-in preset: classic, noir")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
}

func runServe(_ *cobra.Command, _ []string) error {
	logger := newLogger(os.Stderr, "pulsefield-ssh")

	cfg, err := loadConfig()
	if err != nil {
		return err
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

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("session storage unavailable", "error", err)
	} else {
		defer store.Close()
	}

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS
	sshCfg.Config = cfg
	sshCfg.Preset = flagPreset
	sshCfg.Source = flagSource

	server, err := tui.NewSSHServer(sshCfg, src, store, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting pulsefield SSH server on %s\n", server.Addr())
	fmt.Println("Connect with: ssh localhost -p 23235")
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
