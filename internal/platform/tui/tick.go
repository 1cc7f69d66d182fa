// Package tui hosts the particle field in a Bubble Tea program: the host
// tick, key handling, HUD, rendering and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to drive the frame loop.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick after one host
// interval. The field throttles to its own target rate on top of this.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
