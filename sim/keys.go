package sim

import "strings"

var keyNames = map[byte]string{
	0x0E: "`", 0x16: "1", 0x1E: "2", 0x26: "3", 0x25: "4", 0x2E: "5",
	0x36: "6", 0x3D: "7", 0x3E: "8", 0x46: "9", 0x45: "0", 0x4E: "-",
	0x55: "=", 0x66: "backspace", 0x0D: "tab",
	0x15: "q", 0x1D: "w", 0x24: "e", 0x2D: "r", 0x2C: "t", 0x35: "y",
	0x3C: "u", 0x43: "i", 0x44: "o", 0x4D: "p", 0x54: "[", 0x5B: "]",
	0x1C: "a", 0x1B: "s", 0x23: "d", 0x2B: "f", 0x34: "g", 0x33: "h",
	0x3B: "j", 0x42: "k", 0x4B: "l", 0x4C: ";", 0x52: "'", 0x5A: "enter",
	0x1A: "z", 0x22: "x", 0x21: "c", 0x2A: "v", 0x32: "b", 0x31: "n",
	0x3A: "m", 0x41: ",", 0x49: ".", 0x4A: "/",
	0x12: "lshift", 0x59: "rshift", 0x14: "ctrl", 0x11: "alt",
	0x29: "space", 0x58: "capslock", 0x76: "esc",
	// Extended when prefixed with 0xE0.
	0x6B: "left", 0x74: "right", 0x75: "up", 0x72: "down",
}

// KeyName returns a readable name for a scan code set 2 make code.
func KeyName(code byte) string {
	if n, ok := keyNames[code]; ok {
		return n
	}
	return "?"
}

// KeyCode returns the make code for a key name as returned by KeyName.
func KeyCode(name string) (byte, bool) {
	name = strings.ToLower(name)
	for code, n := range keyNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

// Decoder turns the keyboard's byte stream into key events.
type Decoder struct {
	extended bool
	release  bool
}

// KeyEvent is one decoded make or break.
type KeyEvent struct {
	Code     byte
	Extended bool
	Released bool
}

func (e KeyEvent) String() string {
	s := KeyName(e.Code)
	if e.Released {
		return s + " up"
	}
	return s + " down"
}

// Feed consumes one byte. ok is true when b completed a key event.
// Command responses (0xFA, 0xAA, 0xAB, 0x83) are not key events.
func (d *Decoder) Feed(b byte) (ev KeyEvent, ok bool) {
	switch b {
	case 0xE0:
		d.extended = true
		return ev, false
	case 0xF0:
		d.release = true
		return ev, false
	case 0xFA, 0xAA, 0xAB, 0x83, 0xFE, 0xEE:
		return ev, false
	}
	ev = KeyEvent{Code: b, Extended: d.extended, Released: d.release}
	d.extended, d.release = false, false
	return ev, true
}
