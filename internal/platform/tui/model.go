package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/field"
	"github.com/vovakirdan/pulsefield/internal/storage"
	"github.com/vovakirdan/pulsefield/internal/telemetry"
)

// Options configure one viewer.
type Options struct {
	Config  config.Config
	Preset  string
	Source  string // feed source id, shown in the HUD and stored with the session
	Runtime core.RuntimeConfig

	Store     *storage.Store           // optional
	Telemetry *telemetry.OutputManager // optional
	Logger    *log.Logger              // optional
	Renderer  *lipgloss.Renderer       // optional, per SSH session

	Mode          string // "local" or "ssh"
	Viewer        string
	ScreenshotDir string // default ~/.pulsefield/screenshots
}

// eventSink forwards feed events into the loop and remembers the latest
// one for the HUD. Emit is safe for concurrent use.
type eventSink struct {
	loop *field.Loop

	mu   sync.Mutex
	last feed.Event
	seen bool
}

func (s *eventSink) Emit(ev feed.Event) {
	s.loop.Post(ev.Magnitude)
	s.mu.Lock()
	s.last = ev
	s.seen = true
	s.mu.Unlock()
}

func (s *eventSink) Last() (feed.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seen
}

// Model is the Bubble Tea model for one particle field viewer.
type Model struct {
	opts      Options
	loop      *field.Loop
	screen    *core.Screen
	canvas    *core.Canvas
	renderer  *Renderer
	sink      *eventSink
	keys      KeyMap
	help      help.Model
	input     core.InputFrame
	collector *telemetry.Collector
	logger    *log.Logger
	hudColor  core.Color

	origin   time.Time
	started  time.Time
	fps      float64
	showHUD  bool
	quitting bool
	lastShot string
}

// NewModel creates a viewer and populates its field.
func NewModel(opts Options) (Model, error) {
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = time.Now().UnixNano()
	}
	if opts.Mode == "" {
		opts.Mode = "local"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	screen := core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH)
	canvas := core.NewCanvas(screen)
	loop, err := field.New(opts.Config, canvas, opts.Runtime.Seed)
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}

	h := help.New()
	h.Width = opts.Runtime.ScreenW

	now := time.Now()
	return Model{
		opts:      opts,
		loop:      loop,
		screen:    screen,
		canvas:    canvas,
		renderer:  NewRenderer(opts.Renderer),
		sink:      &eventSink{loop: loop},
		keys:      DefaultKeyMap(),
		help:      h,
		input:     core.NewInputFrame(),
		collector: telemetry.NewCollector(1000),
		logger:    logger,
		hudColor:  loop.Palette().HUD,
		origin:    now,
		started:   now,
		showHUD:   true,
	}, nil
}

// Emit posts a feed event to the field. Safe for concurrent use.
func (m Model) Emit(ev feed.Event) {
	m.sink.Emit(ev)
}

// Loop exposes the frame loop.
func (m Model) Loop() *field.Loop {
	return m.loop
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action := m.keys.MapKey(msg); action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionScreenshot:
		m.saveScreenshot()
	case core.ActionNone:
	default:
		m.input.Set(action)
	}
	return m, nil
}

// handleResize changes the surface. The field keeps its entities; clusters
// outside the new bounds drift back in.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.opts.Runtime.ScreenW = msg.Width
	m.opts.Runtime.ScreenH = msg.Height
	w, h := m.opts.Runtime.LogicalSize()
	m.loop.Resize(w, h)
	m.help.Width = msg.Width
	return m, nil
}

// handleTick applies queued actions and runs one host frame.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m = m.applyInput()

	ts := float64(now.Sub(m.origin)) / float64(time.Millisecond)
	if m.loop.Frame(ts) {
		m.observe()
	}

	return m, tickCmd(m.opts.Runtime.TickRate)
}

// applyInput runs the actions collected since the last tick.
func (m Model) applyInput() Model {
	if m.input.Has(core.ActionPause) {
		m.loop.SetPaused(!m.loop.Paused())
	}
	if m.input.Has(core.ActionToggleHUD) {
		m.showHUD = !m.showHUD
	}
	if m.input.Has(core.ActionPulse) {
		m.sink.Emit(feed.Event{Magnitude: m.manualMagnitude(), Title: "manual pulse"})
	}
	if m.input.Has(core.ActionReseed) {
		seed := time.Now().UnixNano()
		m.opts.Runtime.Seed = seed
		m.loop.Reset(seed)
		m.logger.Info("field reseeded", "seed", seed)
	}
	m.input.Clear()
	return m
}

// manualMagnitude is large enough to draw a few connections.
func (m Model) manualMagnitude() float64 {
	return m.opts.Config.Pulse.MagnitudeStep * 2
}

// observe feeds telemetry after an accepted frame.
func (m *Model) observe() {
	w, ok := m.collector.Observe(m.loop.Stats())
	if !ok {
		return
	}
	m.fps = w.FPS
	if err := m.opts.Telemetry.WriteTelemetry(w); err != nil {
		m.logger.Warn("telemetry write failed", "error", err)
	}
}

// saveScreenshot writes the current frame as ANSI text.
func (m *Model) saveScreenshot() {
	dir := m.opts.ScreenshotDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			m.logger.Warn("screenshot: no home directory", "error", err)
			return
		}
		dir = filepath.Join(home, ".pulsefield", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("screenshot: cannot create directory", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("pulsefield_%s.ans", timestamp))
	if err := os.WriteFile(path, []byte(m.renderer.Render(m.screen)+"\n"), 0o600); err != nil {
		m.logger.Warn("screenshot: write failed", "error", err)
		return
	}
	m.lastShot = path
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the field with the HUD on top.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.ClearText()
	if !m.showHUD {
		return m.renderer.Render(m.screen)
	}

	m.drawHUD()
	rows := m.screen.Height()
	body := m.renderer.RenderRows(m.screen, 0, rows-1)
	return body + "\n" + helpStyle.Render(m.help.View(m.keys))
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// drawHUD writes the status lines into the text overlay.
func (m Model) drawHUD() {
	s := m.loop.Stats()
	status := fmt.Sprintf(" %s · %s · %.0f fps · %d particles · %d links · %d pending · %d sparks ",
		m.opts.Source, m.opts.Preset, m.fps, s.Particles, s.Connections, s.Pending, s.Sparks)
	m.screen.DrawTextColored(0, 0, status, m.hudColor)

	counts := fmt.Sprintf(" events %d · pulses %d · dropped %d · max %.0f ",
		s.Events, s.Pulses, s.Dropped, s.MaxMagnitude)
	m.screen.DrawTextColored(0, 1, counts, m.hudColor)

	if ev, ok := m.sink.Last(); ok {
		line := fmt.Sprintf(" %+.0f %s", ev.Magnitude, ev.Title)
		if ev.Wiki != "" {
			line = fmt.Sprintf(" %+.0f %s: %s", ev.Magnitude, ev.Wiki, ev.Title)
		}
		m.screen.DrawTextColored(0, 2, truncate(line, m.screen.Width()), m.hudColor)
	}

	if m.loop.Paused() {
		m.drawPaused()
	}
	if m.lastShot != "" && m.screen.Height() > 4 {
		m.screen.DrawTextColored(0, 3, truncate(" saved "+m.lastShot, m.screen.Width()), m.hudColor)
	}
}

// drawPaused frames a centered pause label. The frame stays above the help
// line on short terminals.
func (m Model) drawPaused() {
	const label = "[ PAUSED ]"
	w, h := m.screen.Width(), m.screen.Height()
	y := core.Clamp(h/2, 1, max(h-3, 1))
	bw := len(label) + 4
	m.screen.DrawBox(core.NewRect(core.Clamp((w-bw)/2, 0, max(w-bw, 0)), y-1, bw, 3), m.hudColor)
	m.screen.DrawTextCentered(y, label, m.hudColor)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-1]) + "…"
}

// Summary describes the run so far for the session store.
func (m Model) Summary() storage.Session {
	s := m.loop.Stats()
	return storage.Session{
		Source:       m.opts.Source,
		Preset:       m.opts.Preset,
		Mode:         m.opts.Mode,
		Viewer:       m.opts.Viewer,
		StartedAt:    m.started,
		Duration:     time.Since(m.started),
		Frames:       s.Frames,
		Events:       s.Events,
		Dropped:      s.Dropped,
		Pulses:       s.Pulses,
		Connections:  s.LinksCreated,
		MaxMagnitude: s.MaxMagnitude,
	}
}

// saveSession stores the summary, logging instead of failing.
func (m Model) saveSession() {
	if m.opts.Store == nil {
		return
	}
	if _, err := m.opts.Store.SaveSession(m.Summary()); err != nil {
		m.logger.Warn("could not save session", "error", err)
	}
}

// Run opens the viewer in the local terminal and feeds it from src until
// the user quits. The session summary is stored on exit.
func Run(ctx context.Context, src feed.Source, opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := src.Run(ctx, model.Emit); err != nil && !feed.Canceled(err) {
			model.logger.Error("feed stopped", "source", opts.Source, "error", err)
		}
	}()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, runErr := p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	model.saveSession()
	if runErr != nil && !interrupted {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}
