package core

import "math"

// Logical size of one terminal cell. Each cell holds two square pixels.
const (
	CellWidth  = 8
	CellHeight = 16
	PixelSize  = CellWidth
)

// Canvas is the drawing surface used by the field simulation. It accepts
// logical pixel coordinates and maps them onto a Screen's pixel layer,
// PixelSize logical units per screen pixel.
type Canvas struct {
	screen *Screen
	width  float64
	height float64
}

// NewCanvas wraps a screen. The logical size follows the screen's cell size.
func NewCanvas(screen *Screen) *Canvas {
	return &Canvas{
		screen: screen,
		width:  float64(screen.Width() * CellWidth),
		height: float64(screen.Height() * CellHeight),
	}
}

// Screen returns the underlying buffer.
func (c *Canvas) Screen() *Screen {
	return c.screen
}

// Size returns the logical surface size.
func (c *Canvas) Size() (width, height float64) {
	return c.width, c.height
}

// Resize sets the logical size and resizes the screen to the number of
// cells needed to cover it.
func (c *Canvas) Resize(width, height float64) {
	c.width = math.Max(width, 0)
	c.height = math.Max(height, 0)
	cols := int(math.Ceil(c.width / CellWidth))
	rows := int(math.Ceil(c.height / CellHeight))
	c.screen.Resize(cols, rows)
}

// Clear paints the whole surface with an opaque color and drops any overlay text.
func (c *Canvas) Clear(col Color) {
	c.screen.ClearText()
	c.screen.FillPixels(col)
}

// FillRect composites a filled rectangle. Anything smaller than a pixel
// still covers the pixel it starts in.
func (c *Canvas) FillRect(x, y, w, h float64, col Color) {
	if col.A <= 0 {
		return
	}
	x0 := floorInt(x / PixelSize)
	y0 := floorInt(y / PixelSize)
	x1 := max(x0+1, int(math.Ceil((x+w)/PixelSize)))
	y1 := max(y0+1, int(math.Ceil((y+h)/PixelSize)))

	area := NewRect(x0, y0, x1-x0, y1-y0).Intersect(c.bounds())
	if area.Empty() {
		return
	}
	for py := area.Y; py < area.Bottom(); py++ {
		for px := area.X; px < area.Right(); px++ {
			c.screen.BlendPixel(px, py, col)
		}
	}
}

// StrokeLine composites a line. dash alternates on/off run lengths measured
// in screen pixels along the line; an empty pattern draws a solid line.
// width is in logical pixels and is rounded to whole screen pixels.
func (c *Canvas) StrokeLine(x1, y1, x2, y2 float64, col Color, width float64, dash []float64) {
	if col.A <= 0 {
		return
	}
	px0, py0 := floorInt(x1/PixelSize), floorInt(y1/PixelSize)
	px1, py1 := floorInt(x2/PixelSize), floorInt(y2/PixelSize)
	thick := max(1, int(math.Round(width/PixelSize)))
	pattern := newDash(dash)

	// Bresenham over the pixel grid.
	dx := absInt(px1 - px0)
	dy := -absInt(py1 - py0)
	sx, sy := 1, 1
	if px0 > px1 {
		sx = -1
	}
	if py0 > py1 {
		sy = -1
	}
	errAcc := dx + dy
	bounds := c.bounds()
	for step := 0; ; step++ {
		if pattern.on(step) {
			for ty := 0; ty < thick; ty++ {
				for tx := 0; tx < thick; tx++ {
					if bounds.Contains(px0+tx, py0+ty) {
						c.screen.BlendPixel(px0+tx, py0+ty, col)
					}
				}
			}
		}
		if px0 == px1 && py0 == py1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			px0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			py0 += sy
		}
	}
}

func (c *Canvas) bounds() Rect {
	return NewRect(0, 0, c.screen.PixelWidth(), c.screen.PixelHeight())
}

// dashPattern holds integer run lengths; total 0 means solid.
type dashPattern struct {
	runs  []int
	total int
}

func newDash(dash []float64) dashPattern {
	var p dashPattern
	for _, d := range dash {
		n := max(0, int(math.Round(d)))
		p.runs = append(p.runs, n)
		p.total += n
	}
	// An odd-length pattern repeats itself, as canvas line dashes do.
	if len(p.runs)%2 == 1 {
		p.runs = append(p.runs, p.runs...)
		p.total *= 2
	}
	return p
}

func (p dashPattern) on(step int) bool {
	if p.total == 0 {
		return true
	}
	pos := step % p.total
	for i, n := range p.runs {
		if pos < n {
			return i%2 == 0
		}
		pos -= n
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
