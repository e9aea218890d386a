package sim

import (
	"fmt"
	"math/bits"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
)

// FrameBits is the number of bits in a PS/2 frame.
const FrameBits = 11

// Frame is one complete frame as seen on the wire. Bits holds the wire
// bits in order, bit 0 is the start bit and bit 10 the stop or
// acknowledge bit.
type Frame struct {
	Dir  ps2kbd.Direction
	Bits uint16
	Tick uint64
}

// EncodeFrame builds the wire bits for b with odd parity. The terminator
// is high, as sent by the keyboard, or low for an acknowledged host frame.
func EncodeFrame(b byte, terminator bool) uint16 {
	v := uint16(b) << 1
	if bits.OnesCount8(b)%2 == 0 {
		v |= 1 << 9
	}
	if terminator {
		v |= 1 << 10
	}
	return v
}

// Data returns the data byte.
func (f Frame) Data() byte {
	return byte(f.Bits >> 1)
}

// ParityOK reports whether data and parity bit have an odd number of ones.
func (f Frame) ParityOK() bool {
	return bits.OnesCount16(f.Bits>>1&0x1FF)%2 == 1
}

// Valid reports whether the frame has a low start bit, good parity and the
// terminator expected for its direction.
func (f Frame) Valid() bool {
	if f.Bits&1 != 0 || !f.ParityOK() {
		return false
	}
	stop := f.Bits&(1<<10) != 0
	if f.Dir == ps2kbd.Receive {
		return !stop
	}
	return stop
}

func (f Frame) String() string {
	arrow := "kbd->host"
	if f.Dir == ps2kbd.Receive {
		arrow = "host->kbd"
	}
	s := fmt.Sprintf("%s %02X", arrow, f.Data())
	if !f.Valid() {
		s += fmt.Sprintf(" (bad frame %011b)", f.Bits)
	}
	return s
}
