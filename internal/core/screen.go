package core

// Cell is one text overlay cell. A space means "no glyph": the pixels
// underneath show through.
type Cell struct {
	Rune  rune
	Color Color
}

// Screen is a terminal-sized buffer with two layers: a pixel layer holding
// two vertically stacked pixels per character cell (drawn with half blocks),
// and a text overlay used for the HUD.
//
// Width and Height are in character cells; the pixel layer is Width x 2*Height.
type Screen struct {
	width  int
	height int
	cells  [][]Cell
	pix    [][]Color
}

// NewScreen creates a new screen buffer with the given dimensions.
func NewScreen(width, height int) *Screen {
	s := &Screen{
		width:  max(width, 0),
		height: max(height, 0),
	}
	s.allocate()
	s.Clear()
	return s
}

// allocate creates the underlying cell and pixel storage.
func (s *Screen) allocate() {
	s.cells = make([][]Cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]Cell, s.width)
	}
	s.pix = make([][]Color, s.height*2)
	for y := range s.pix {
		s.pix[y] = make([]Color, s.width)
	}
}

// Width returns the screen width in characters.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in characters.
func (s *Screen) Height() int {
	return s.height
}

// PixelWidth returns the pixel layer width.
func (s *Screen) PixelWidth() int {
	return s.width
}

// PixelHeight returns the pixel layer height (two pixels per row).
func (s *Screen) PixelHeight() int {
	return s.height * 2
}

// Resize changes the screen dimensions, preserving content where possible.
func (s *Screen) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == s.width && height == s.height {
		return
	}

	oldCells, oldPix := s.cells, s.pix
	oldW, oldH := s.width, s.height

	s.width = width
	s.height = height
	s.allocate()
	s.Clear()

	copyW := min(oldW, width)
	copyH := min(oldH, height)
	for y := 0; y < copyH; y++ {
		copy(s.cells[y][:copyW], oldCells[y][:copyW])
	}
	for y := 0; y < copyH*2; y++ {
		copy(s.pix[y][:copyW], oldPix[y][:copyW])
	}
}

// Clear blanks the text overlay and paints every pixel black.
func (s *Screen) Clear() {
	s.ClearText()
	s.FillPixels(Black)
}

// ClearText blanks the text overlay only.
func (s *Screen) ClearText() {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = Cell{Rune: ' '}
		}
	}
}

// FillPixels paints every pixel with the opaque version of c.
func (s *Screen) FillPixels(c Color) {
	c.A = 1
	for y := range s.pix {
		for x := range s.pix[y] {
			s.pix[y][x] = c
		}
	}
}

// SetColored places a rune with a foreground color.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) SetColored(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = Cell{Rune: r, Color: c}
}

// Get returns the rune at the given position.
// Returns space for out-of-bounds coordinates.
func (s *Screen) Get(x, y int) rune {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return ' '
	}
	return s.cells[y][x].Rune
}

// TextColor returns the foreground color of the overlay cell at (x, y).
func (s *Screen) TextColor(x, y int) Color {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return White
	}
	return s.cells[y][x].Color
}

// Pixel returns the pixel at (px, py). Out-of-bounds reads return black.
func (s *Screen) Pixel(px, py int) Color {
	if px < 0 || px >= s.width || py < 0 || py >= s.height*2 {
		return Black
	}
	return s.pix[py][px]
}

// BlendPixel composites c over the pixel at (px, py).
func (s *Screen) BlendPixel(px, py int, c Color) {
	if px < 0 || px >= s.width || py < 0 || py >= s.height*2 {
		return
	}
	s.pix[py][px] = c.Over(s.pix[py][px])
}

// HalfBlocks returns the top and bottom pixels backing the cell at (x, y).
func (s *Screen) HalfBlocks(x, y int) (top, bottom Color) {
	return s.Pixel(x, y*2), s.Pixel(x, y*2+1)
}

// DrawTextColored writes a string horizontally starting at (x, y).
// Characters that extend beyond screen bounds are clipped.
func (s *Screen) DrawTextColored(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.SetColored(x+i, y, r, c)
		i++
	}
}

// DrawTextCentered draws text centered horizontally at the given y position.
func (s *Screen) DrawTextCentered(y int, text string, c Color) {
	x := (s.width - len([]rune(text))) / 2
	s.DrawTextColored(x, y, text, c)
}

// DrawBox draws a box outline using box-drawing characters.
func (s *Screen) DrawBox(r Rect, c Color) {
	s.SetColored(r.X, r.Y, '┌', c)
	s.SetColored(r.Right()-1, r.Y, '┐', c)
	s.SetColored(r.X, r.Bottom()-1, '└', c)
	s.SetColored(r.Right()-1, r.Bottom()-1, '┘', c)

	for x := r.X + 1; x < r.Right()-1; x++ {
		s.SetColored(x, r.Y, '─', c)
		s.SetColored(x, r.Bottom()-1, '─', c)
	}
	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		s.SetColored(r.X, y, '│', c)
		s.SetColored(r.Right()-1, y, '│', c)
	}
}
