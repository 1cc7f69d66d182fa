package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pulsefield/internal/core"
)

// Upper half block: foreground paints the top pixel, background the bottom.
const halfBlock = '▀'

type styleKey struct {
	fg, bg string
}

// Renderer converts a Screen to styled terminal text. Each cell shows two
// pixels as a half block; overlay text is drawn over the blended pair.
// Styles are cached per colour pair.
type Renderer struct {
	lg     *lipgloss.Renderer
	styles map[styleKey]lipgloss.Style
}

// NewRenderer creates a renderer. A nil lipgloss renderer selects the
// default one (local terminal); SSH sessions pass their own.
func NewRenderer(lg *lipgloss.Renderer) *Renderer {
	if lg == nil {
		lg = lipgloss.DefaultRenderer()
	}
	return &Renderer{lg: lg, styles: make(map[styleKey]lipgloss.Style)}
}

func (r *Renderer) style(k styleKey) lipgloss.Style {
	if s, ok := r.styles[k]; ok {
		return s
	}
	s := r.lg.NewStyle().
		Foreground(lipgloss.Color(k.fg)).
		Background(lipgloss.Color(k.bg))
	r.styles[k] = s
	return s
}

// cell resolves the glyph and colours of one terminal cell.
func cell(s *core.Screen, x, y int) (rune, styleKey) {
	top, bottom := s.HalfBlocks(x, y)
	if r := s.Get(x, y); r != ' ' && r != 0 {
		return r, styleKey{fg: s.TextColor(x, y).Hex(), bg: top.Mix(bottom).Hex()}
	}
	th, bh := top.Hex(), bottom.Hex()
	if th == bh {
		return ' ', styleKey{fg: th, bg: bh}
	}
	return halfBlock, styleKey{fg: th, bg: bh}
}

// Render draws the whole screen.
func (r *Renderer) Render(s *core.Screen) string {
	return r.RenderRows(s, 0, s.Height())
}

// RenderRows draws rows [from, to). Adjacent cells with the same colours
// are grouped to minimize ANSI escape sequences.
func (r *Renderer) RenderRows(s *core.Screen, from, to int) string {
	from = max(from, 0)
	to = min(to, s.Height())

	var sb strings.Builder
	sb.Grow(s.Width() * max(to-from, 0) * 4)

	glyphs := make([]rune, s.Width())
	keys := make([]styleKey, s.Width())
	var run strings.Builder
	for y := from; y < to; y++ {
		if y > from {
			sb.WriteRune('\n')
		}
		for x := range glyphs {
			glyphs[x], keys[x] = cell(s, x, y)
		}

		x := 0
		for x < len(glyphs) {
			key := keys[x]
			run.Reset()
			for x < len(glyphs) && sameStyle(glyphs[x], keys[x], key) {
				run.WriteRune(glyphs[x])
				x++
			}
			sb.WriteString(r.style(key).Render(run.String()))
		}
	}
	return sb.String()
}

// sameStyle reports whether a cell can join a run styled with key. A blank
// cell only needs its background to match.
func sameStyle(ch rune, k, key styleKey) bool {
	if k == key {
		return true
	}
	return ch == ' ' && k.bg == key.bg && k.fg == k.bg
}
