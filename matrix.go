package ps2kbd

// Matrix dimensions.
const (
	MatrixRows = 8
	MatrixCols = 8
)

// DebounceCycles is the number of scans a change must survive before it
// is reported.
const DebounceCycles = 20

// Prefix bytes sent ahead of a key's scan code.
const (
	ScanCodeExtended = 0xE0
	ScanCodeRelease  = 0xF0
)

// Keymap maps matrix row/column to a scan code set 2 code. Zero marks an
// unused position.
type Keymap [MatrixRows][MatrixCols]byte

// DefaultKeymap is the CreatiVision keyboard layout. Rows are the strobe
// lines, columns the sense lines.
var DefaultKeymap = Keymap{
	{0x16, 0x1E, 0x26, 0x25, 0x2E, 0x36, 0x00, 0x00},
	{0x00, 0x15, 0x1D, 0x24, 0x2D, 0x2C, 0x14, 0x00},
	{0x6B, 0x1C, 0x1B, 0x23, 0x2B, 0x34, 0x00, 0x00},
	{0x00, 0x1A, 0x22, 0x21, 0x2A, 0x32, 0x00, 0x59},
	{0x3D, 0x3E, 0x46, 0x45, 0x52, 0x4E, 0x00, 0x00},
	{0x35, 0x3C, 0x43, 0x44, 0x4D, 0x5A, 0x00, 0x00},
	{0x33, 0x3B, 0x42, 0x4B, 0x4C, 0x74, 0x00, 0x00},
	{0x31, 0x3A, 0x41, 0x49, 0x4A, 0x29, 0x00, 0x00},
}

// RowColMask is the port bit for each row or column line.
var RowColMask = [MatrixRows]uint8{1 << 0, 1 << 1, 1 << 2, 1 << 3, 1 << 4, 1 << 5, 1 << 6, 1 << 7}

// IsExtended reports whether code must be preceded by ScanCodeExtended.
// Only the two cursor keys on this keyboard are extended.
func IsExtended(code byte) bool {
	return code == 0x6B || code == 0x74
}

// Lookup returns the row and column carrying code.
func (m *Keymap) Lookup(code byte) (row, col int, ok bool) {
	if code == 0 {
		return 0, 0, false
	}
	for r := range m {
		for c := range m[r] {
			if m[r][c] == code {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// keySwitch is the debounce state of one matrix position.
type keySwitch struct {
	released bool
	debounce uint8
}

// Scan reads the whole matrix once, advancing every switch's debounce
// state and queueing the scan codes of confirmed transitions.
func (k *Keyboard) Scan() {
	for r := 0; r < MatrixRows; r++ {
		k.matrix.SelectRow(r)
		cols := k.matrix.ReadColumns()
		k.matrix.ReleaseRow(r)

		for c := 0; c < MatrixCols; c++ {
			k.scanSwitch(r, c, cols&RowColMask[c] != 0)
		}
	}
}

func (k *Keyboard) scanSwitch(r, c int, released bool) {
	sw := &k.switches[r][c]

	switch {
	case sw.debounce > 1:
		sw.debounce--
	case sw.debounce == 1:
		// Same level as when the change was latched: confirmed.
		if released == sw.released && k.keymap[r][c] != 0 {
			k.sendKey(k.keymap[r][c], released)
		}
		sw.debounce = 0
	case released != sw.released:
		sw.released = released
		sw.debounce = k.debounce
	}
}

// sendKey queues the make or break sequence for code as one unit.
func (k *Keyboard) sendKey(code byte, released bool) {
	if debug {
		println("ps2kbd: key", code, "released", released)
	}

	k.lock.Lock()
	if IsExtended(code) {
		k.out.Push(ScanCodeExtended)
	}
	if released {
		k.out.Push(ScanCodeRelease)
	}
	k.out.Push(code)
	k.lock.Unlock()
}

// IsDown reports the latched state of the switch at row r, column c.
// A change is latched at the start of its debounce interval.
func (k *Keyboard) IsDown(r, c int) bool {
	return !k.switches[r][c].released
}
