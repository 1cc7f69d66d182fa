package field

import "github.com/vovakirdan/pulsefield/internal/core"

// Surface is the drawing target. Coordinates are logical pixels.
// core.Canvas is the terminal implementation.
type Surface interface {
	Size() (width, height float64)
	Resize(width, height float64)
	Clear(c core.Color)
	FillRect(x, y, w, h float64, c core.Color)
	StrokeLine(x1, y1, x2, y2 float64, c core.Color, width float64, dash []float64)
}

var _ Surface = (*core.Canvas)(nil)
