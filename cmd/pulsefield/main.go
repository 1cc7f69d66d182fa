// pulsefield renders a field of particle clusters that pulse with a live
// event feed.
//
// Usage:
//
//	pulsefield watch          - Watch a feed in the terminal
//	pulsefield serve          - Start SSH server, one field per viewer
//	pulsefield sources        - List available feed sources
//	pulsefield presets        - List built-in presets
//	pulsefield stats          - Show recorded viewing sessions
//
// Global flags:
//
//	--fps <rate>            - Host tick rate (default: 60)
//	--seed <value>          - RNG seed for a reproducible field
//	--db <path>             - Session database (default: ~/.pulsefield/sessions.db)
//	--log-file <path>       - Log file for watch mode (default: ~/.pulsefield/pulsefield.log)
//	--telemetry-dir <path>  - Write telemetry.csv and config.yaml here
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import sources to register them
	_ "github.com/vovakirdan/pulsefield/internal/feed/synthetic"
	_ "github.com/vovakirdan/pulsefield/internal/feed/wikimedia"
	_ "github.com/vovakirdan/pulsefield/internal/feed/wsfeed"
)

var (
	// Global flags
	flagFPS          int
	flagSeed         int64
	flagDBPath       string
	flagLogFile      string
	flagTelemetryDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pulsefield",
	Short: "Pulsefield - a particle field driven by live events",
	Long: `Pulsefield draws drifting clusters of particles in your terminal.
Every event from the feed lights a particle and links it to others;
bigger events draw more links.

Available commands:
  watch    - Watch a feed in the terminal
  serve    - Start SSH server, one field per viewer
  sources  - Show all feed sources
  presets  - Show built-in presets
  stats    - View recorded sessions

Examples:
  pulsefield watch
  pulsefield watch --source synthetic --rate 40
  pulsefield watch --preset noir
  pulsefield serve --ssh :2222
  pulsefield stats --plain`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Host tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.pulsefield/sessions.db", "Path to sessions database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.pulsefield/pulsefield.log", "Log file for watch mode")
	rootCmd.PersistentFlags().StringVar(&flagTelemetryDir, "telemetry-dir", "", "Directory for telemetry CSV output (disabled if empty)")

	// Add subcommands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(statsCmd)
}
