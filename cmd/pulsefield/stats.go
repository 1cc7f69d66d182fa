package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pulsefield/internal/platform/tui"
	"github.com/vovakirdan/pulsefield/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
	flagClear bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded viewing sessions",
	Long: `Display recent sessions and per-source totals.

Without --plain an interactive board opens; tab switches between sources.

Examples:
  pulsefield stats
  pulsefield stats --plain --limit 20
  pulsefield stats --clear`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain table instead of the interactive board")
	statsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of sessions to print with --plain")
	statsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded sessions")
}

func runStats(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening sessions database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearSessions(); err != nil {
			return err
		}
		fmt.Println("All sessions deleted.")
		return nil
	}

	if !flagPlain {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunStatsBoard(store, width, height)
	}

	sessions, err := store.RecentSessions(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Recent sessions")
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'pulsefield watch' to start one!")
		return nil
	}

	format := "  %-12s  %-10s  %-5s  %7s  %7s  %7s  %6s\n"
	fmt.Printf(format, "Started", "Source", "Mode", "Time", "Events", "Pulses", "Max")
	fmt.Printf(format, "-------", "------", "----", "----", "------", "------", "---")
	for _, s := range sessions {
		row := tui.SessionRow(s)
		fmt.Printf(format, row[0], row[1], row[2], row[3], row[4], row[5], row[6])
	}

	stats, err := store.AllSourceStats()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println()
	fmt.Println("Per source")
	fmt.Println()
	for _, id := range ids {
		st := stats[id]
		fmt.Printf("  %-10s  %d sessions, %s watched, %.1f events/min, max %.0f\n",
			id, st.Sessions, st.Watched.Round(time.Second), st.EventsPerMinute(), st.MaxMagnitude)
	}
	return nil
}
