// Package grid holds the launcher's selection arithmetic: a single index into
// the entry list laid out row-major over a fixed number of columns.
package grid

// Move returns the index reached from current by moving dRow rows and dCol
// columns. Moves that would leave the current row horizontally, leave the
// grid vertically, or land past the last entry of a ragged final row are
// rejected and current is returned unchanged.
func Move(current, dRow, dCol, columns, count int) int {
	if columns <= 0 || count <= 0 || current < 0 || current >= count {
		return current
	}

	next := current

	if dCol != 0 {
		col := next%columns + dCol
		if col < 0 || col >= columns {
			return current
		}

		next += dCol
		if next < 0 || next >= count {
			return current
		}
	}

	if dRow != 0 {
		next += dRow * columns
		if next < 0 || next >= count {
			return current
		}
	}

	return next
}

// Cursor tracks the selected entry.
type Cursor struct {
	index   int
	columns int
	count   int
}

// NewCursor returns a cursor at index 0. columns is clamped to at least 1.
func NewCursor(columns, count int) *Cursor {
	if columns < 1 {
		columns = 1
	}

	return &Cursor{columns: columns, count: count}
}

// Index returns the selected index.
func (c *Cursor) Index() int {
	return c.index
}

// Columns returns the column count.
func (c *Cursor) Columns() int {
	return c.columns
}

// Count returns the number of entries.
func (c *Cursor) Count() int {
	return c.count
}

// Move applies a delta and reports whether the index changed.
func (c *Cursor) Move(dRow, dCol int) bool {
	next := Move(c.index, dRow, dCol, c.columns, c.count)
	if next == c.index {
		return false
	}

	c.index = next

	return true
}

// Set selects index directly and reports whether it changed. Out-of-range
// indexes are ignored.
func (c *Cursor) Set(index int) bool {
	if index < 0 || index >= c.count || index == c.index {
		return false
	}

	c.index = index

	return true
}

// RowCol returns the row and column of the selected index.
func (c *Cursor) RowCol() (row, col int) {
	return c.index / c.columns, c.index % c.columns
}
