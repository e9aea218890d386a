package sim

import (
	"sync"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
)

// Matrix is a switch matrix with pull-ups on the columns. A closed switch
// connects its column to the strobed row and reads low.
type Matrix struct {
	mu     sync.Mutex
	closed [ps2kbd.MatrixRows][ps2kbd.MatrixCols]bool
	row    int

	// Strobes counts row selections.
	Strobes int
}

// NewMatrix returns a matrix with every switch open and no row selected.
func NewMatrix() *Matrix {
	return &Matrix{row: -1}
}

// Press closes the switch at r, c.
func (m *Matrix) Press(r, c int) {
	m.set(r, c, true)
}

// Release opens the switch at r, c.
func (m *Matrix) Release(r, c int) {
	m.set(r, c, false)
}

// Pressed reports whether the switch at r, c is closed.
func (m *Matrix) Pressed(r, c int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed[r][c]
}

func (m *Matrix) set(r, c int, closed bool) {
	m.mu.Lock()
	m.closed[r][c] = closed
	m.mu.Unlock()
}

// SelectRow implements ps2kbd.Matrix.
func (m *Matrix) SelectRow(r int) {
	m.mu.Lock()
	m.row = r
	m.Strobes++
	m.mu.Unlock()
}

// ReleaseRow implements ps2kbd.Matrix.
func (m *Matrix) ReleaseRow(int) {
	m.mu.Lock()
	m.row = -1
	m.mu.Unlock()
}

// ReadColumns implements ps2kbd.Matrix.
func (m *Matrix) ReadColumns() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.row < 0 {
		return 0xFF
	}
	var v uint8
	for c, closed := range m.closed[m.row] {
		if !closed {
			v |= ps2kbd.RowColMask[c]
		}
	}
	return v
}
