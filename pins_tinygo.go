//go:build tinygo

package ps2kbd

import (
	"machine"
	"runtime/interrupt"
	"time"
)

// PinConfig holds the pin assignment of the keyboard.
type PinConfig struct {
	Clock machine.Pin // PS/2 clock, open drain with external pull-up
	Data  machine.Pin // PS/2 data, open drain with external pull-up

	Rows [MatrixRows]machine.Pin // matrix strobes, driven low one at a time
	Cols [MatrixCols]machine.Pin // matrix sense lines, pulled up
}

// DataToClockDelay is the time between a data line change (or sample)
// and the following clock edge.
const DataToClockDelay = 10 * time.Microsecond

// RowSettleDelay is the time allowed for a strobed row to settle before
// the columns are read.
const RowSettleDelay = 10 * time.Microsecond

// NewWithPins creates a keyboard on the given pins. The returned keyboard
// masks interrupts around shared state, so Tick can be called directly
// from a timer interrupt handler.
func NewWithPins(pins PinConfig) *Keyboard {
	for _, p := range pins.Cols {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	latchLow(pins.Clock)
	latchLow(pins.Data)
	for _, p := range pins.Rows {
		latchLow(p)
	}
	m := &pinMatrix{pins: pins}

	return New(Config{
		Bus: Bus{
			Clock: openDrain(pins.Clock),
			Data:  openDrain(pins.Data),
		},
		Matrix: m,
		Timing: TimingFunc(func() { spin(DataToClockDelay) }),
		Lock:   &interruptLock{},
	})
}

// latchLow sets the output latch of an open-drain pin to low once and
// leaves the pin floating. From then on only its direction changes.
func latchLow(p machine.Pin) {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
}

// openDrain drives the pin low by making it an output and floats it by
// making it an input. The latch is set low by latchLow.
type openDrain machine.Pin

func (p openDrain) Get() bool {
	return machine.Pin(p).Get()
}

type pinMatrix struct {
	pins PinConfig
}

func (m *pinMatrix) SelectRow(row int) {
	openDrain(m.pins.Rows[row]).Low()
	spin(RowSettleDelay)
}

func (m *pinMatrix) ReleaseRow(row int) {
	openDrain(m.pins.Rows[row]).Release()
}

func (m *pinMatrix) ReadColumns() uint8 {
	var v uint8
	for c, p := range m.pins.Cols {
		if p.Get() {
			v |= RowColMask[c]
		}
	}
	return v
}

// interruptLock is a critical section that masks interrupts. It is safe
// to take from inside the tick interrupt handler.
type interruptLock struct {
	state interrupt.State
}

func (l *interruptLock) Lock() {
	state := interrupt.Disable()
	l.state = state
}

func (l *interruptLock) Unlock() {
	interrupt.Restore(l.state)
}

// spin busy-waits for d. Sleeping is not possible inside an interrupt.
func spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}
