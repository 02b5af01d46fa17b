package ui

const (
	// HeaderHeight is the title line plus the status line.
	HeaderHeight = 2
	// FooterHeight is the key hint line.
	FooterHeight = 1

	cardGap       = 1
	maxCardHeight = 7
	minWidth      = 20
)

// Rect is a cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Frame is the launcher layout for one terminal size.
type Frame struct {
	Width  int
	Height int

	Columns int
	Rows    int

	// Cards holds one rectangle per entry in entry order. Cards in rows
	// that do not fit are still laid out below the footer and clipped.
	Cards []Rect
}

// ClampTerminalSize enforces minimum terminal dimensions.
func ClampTerminalSize(width, height int) (clampedWidth, clampedHeight int) {
	if width < minWidth {
		width = minWidth
	}

	minHeight := HeaderHeight + FooterHeight + 1
	if height < minHeight {
		height = minHeight
	}

	return width, height
}

// ComputeFrame lays count cards out in columns across the area between the
// header and the footer.
func ComputeFrame(width, height, columns, count int) Frame {
	width, height = ClampTerminalSize(width, height)

	if columns < 1 {
		columns = 1
	}

	rows := (count + columns - 1) / columns
	frame := Frame{
		Width:   width,
		Height:  height,
		Columns: columns,
		Rows:    rows,
	}

	if count == 0 {
		return frame
	}

	cardW := (width - cardGap*(columns+1)) / columns
	if cardW < 1 {
		cardW = 1
	}

	area := height - HeaderHeight - FooterHeight

	cardH := (area - cardGap*(rows-1)) / rows
	if cardH > maxCardHeight {
		cardH = maxCardHeight
	}

	if cardH < 1 {
		cardH = 1
	}

	frame.Cards = make([]Rect, count)
	for i := range frame.Cards {
		row, col := i/columns, i%columns
		frame.Cards[i] = Rect{
			X: cardGap + col*(cardW+cardGap),
			Y: HeaderHeight + row*(cardH+cardGap),
			W: cardW,
			H: cardH,
		}
	}

	return frame
}

// HitTest returns the card under (x, y). Cells outside the grid area never
// match.
func (f Frame) HitTest(x, y int) (int, bool) {
	if y < HeaderHeight || y >= f.Height-FooterHeight {
		return 0, false
	}

	for i, r := range f.Cards {
		if r.Contains(x, y) {
			return i, true
		}
	}

	return 0, false
}
