package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/registry"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all feed sources",
	Long:  `Shows the feed sources that can drive the field.`,
	Args:  cobra.NoArgs,
	Run:   runSources,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets",
	Long:  `Shows the built-in configuration presets. Use --config to overlay your own YAML.`,
	Args:  cobra.NoArgs,
	Run:   runPresets,
}

func runSources(_ *cobra.Command, _ []string) {
	sources := registry.List()

	if len(sources) == 0 {
		fmt.Println("No sources available.")
		return
	}

	fmt.Println("Available sources:")
	fmt.Println()

	rows := make([][2]string, len(sources))
	for i, s := range sources {
		rows[i] = [2]string{s.ID, s.Title}
	}
	printTable([2]string{"ID", "Title"}, rows)

	fmt.Println()
	fmt.Println("Run 'pulsefield watch --source <id>' to use one.")
}

func runPresets(_ *cobra.Command, _ []string) {
	fmt.Println("Built-in presets:")
	fmt.Println()

	presets := config.Presets()
	rows := make([][2]string, len(presets))
	for i, p := range presets {
		rows[i] = [2]string{string(p.Name), p.Description}
	}
	printTable([2]string{"Name", "Description"}, rows)

	fmt.Println()
	fmt.Println("Run 'pulsefield watch --preset <name>' to use one.")
}

// printTable prints two aligned columns with a dashed header.
func printTable(header [2]string, rows [][2]string) {
	width := len(header[0])
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	fmt.Printf("  %-*s  %s\n", width, header[0], header[1])
	fmt.Printf("  %-*s  %s\n", width, strings.Repeat("-", len(header[0])), strings.Repeat("-", len(header[1])))
	for _, r := range rows {
		fmt.Printf("  %-*s  %s\n", width, r[0], r[1])
	}
}
