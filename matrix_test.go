package ps2kbd

import (
	"bytes"
	"testing"
)

type fakeMatrix struct {
	closed [MatrixRows][MatrixCols]bool
	row    int
}

func (m *fakeMatrix) SelectRow(r int) { m.row = r }
func (m *fakeMatrix) ReleaseRow(int)  { m.row = -1 }

func (m *fakeMatrix) ReadColumns() uint8 {
	var v uint8
	for c, closed := range m.closed[m.row] {
		if !closed {
			v |= RowColMask[c]
		}
	}
	return v
}

type fakeLine struct {
	low bool
}

func (l *fakeLine) Low()      { l.low = true }
func (l *fakeLine) Release()  { l.low = false }
func (l *fakeLine) Get() bool { return !l.low }

func newTestKeyboard(cfg Config) (*Keyboard, *fakeMatrix) {
	m := &fakeMatrix{row: -1}
	cfg.Matrix = m
	cfg.Bus = Bus{Clock: &fakeLine{}, Data: &fakeLine{}}
	return New(cfg), m
}

func scanN(k *Keyboard, n int) {
	for i := 0; i < n; i++ {
		k.Scan()
	}
}

func TestScanPressAndRelease(t *testing.T) {
	k, m := newTestKeyboard(Config{})

	m.closed[0][1] = true
	scanN(k, DebounceCycles)
	if !k.out.Empty() {
		t.Fatalf("queued % X before debounce finished", drain(&k.out))
	}
	if !k.IsDown(0, 1) {
		t.Error("press not latched")
	}
	k.Scan()
	if got := drain(&k.out); !bytes.Equal(got, []byte{0x1E}) {
		t.Fatalf("make = % X, want 1E", got)
	}

	scanN(k, 3*DebounceCycles)
	if !k.out.Empty() {
		t.Fatalf("held key repeated: % X", drain(&k.out))
	}

	m.closed[0][1] = false
	scanN(k, DebounceCycles+1)
	if got := drain(&k.out); !bytes.Equal(got, []byte{ScanCodeRelease, 0x1E}) {
		t.Fatalf("break = % X, want F0 1E", got)
	}
}

func TestScanExtendedKeys(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		code     byte
	}{
		{"left", 2, 0, 0x6B},
		{"right", 6, 5, 0x74},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, m := newTestKeyboard(Config{})

			m.closed[tt.row][tt.col] = true
			scanN(k, DebounceCycles+1)
			want := []byte{ScanCodeExtended, tt.code}
			if got := drain(&k.out); !bytes.Equal(got, want) {
				t.Errorf("make = % X, want % X", got, want)
			}

			m.closed[tt.row][tt.col] = false
			scanN(k, DebounceCycles+1)
			want = []byte{ScanCodeExtended, ScanCodeRelease, tt.code}
			if got := drain(&k.out); !bytes.Equal(got, want) {
				t.Errorf("break = % X, want % X", got, want)
			}
		})
	}
}

func TestScanEveryMappedKey(t *testing.T) {
	k, m := newTestKeyboard(Config{})

	for r := 0; r < MatrixRows; r++ {
		for c := 0; c < MatrixCols; c++ {
			code := DefaultKeymap[r][c]

			m.closed[r][c] = true
			scanN(k, DebounceCycles+1)
			m.closed[r][c] = false
			scanN(k, DebounceCycles+1)

			var want []byte
			if code != 0 {
				if IsExtended(code) {
					want = []byte{ScanCodeExtended, code, ScanCodeExtended, ScanCodeRelease, code}
				} else {
					want = []byte{code, ScanCodeRelease, code}
				}
			}
			if got := drain(&k.out); !bytes.Equal(got, want) {
				t.Errorf("row %d col %d: queued % X, want % X", r, c, got, want)
			}
		}
	}
}

func TestScanUnmappedNeverSends(t *testing.T) {
	k, m := newTestKeyboard(Config{})

	// Row 0, column 6 has no scan code. Toggle it with every period from
	// one scan up to well past the debounce interval.
	for period := 1; period <= 2*DebounceCycles+3; period++ {
		for i := 0; i < 4; i++ {
			m.closed[0][6] = !m.closed[0][6]
			scanN(k, period)
		}
	}
	m.closed[0][6] = false
	scanN(k, 3*DebounceCycles)

	if !k.out.Empty() {
		t.Errorf("unmapped switch queued % X", drain(&k.out))
	}
}

func TestScanBounceIsNotConfirmed(t *testing.T) {
	k, m := newTestKeyboard(Config{})

	m.closed[1][1] = true
	scanN(k, 5)
	m.closed[1][1] = false
	scanN(k, DebounceCycles-4)

	if !k.out.Empty() {
		t.Errorf("bounce confirmed as % X", drain(&k.out))
	}
}

func TestScanCustomConfig(t *testing.T) {
	var km Keymap
	km[7][7] = 0x76
	k, m := newTestKeyboard(Config{Keymap: &km, Debounce: 3})

	m.closed[7][7] = true
	m.closed[0][1] = true // mapped only in DefaultKeymap
	scanN(k, 3)
	if !k.out.Empty() {
		t.Fatalf("queued % X before debounce finished", drain(&k.out))
	}
	k.Scan()
	if got := drain(&k.out); !bytes.Equal(got, []byte{0x76}) {
		t.Errorf("queued % X, want 76", got)
	}
}

func TestKeymapLookup(t *testing.T) {
	r, c, ok := DefaultKeymap.Lookup(0x5A)
	if !ok || r != 5 || c != 5 {
		t.Errorf("Lookup(0x5A) = %d, %d, %v, want 5, 5, true", r, c, ok)
	}
	if _, _, ok := DefaultKeymap.Lookup(0); ok {
		t.Error("Lookup(0) found a key")
	}
	if _, _, ok := DefaultKeymap.Lookup(0x76); ok {
		t.Error("Lookup(0x76) found a key")
	}
}
