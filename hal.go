package ps2kbd

import "sync"

// Line is one open-drain signal. A side asserts it by driving it low and
// releases it by returning the pin to high impedance; it is never driven
// high. Get reports the level actually present on the wire.
type Line interface {
	Low()
	Release()
	Get() bool
}

// Bus is the two-wire PS/2 connection seen from the keyboard.
type Bus struct {
	Clock Line
	Data  Line
}

// Sample reads both lines.
func (b Bus) Sample() Sample {
	return Sample{Clock: b.Clock.Get(), Data: b.Data.Get()}
}

// Matrix is the keyboard switch matrix. Rows are strobed low one at a time
// and columns are pulled up, so a closed switch reads as a cleared bit.
type Matrix interface {
	SelectRow(row int)
	ReleaseRow(row int)
	ReadColumns() uint8
}

// Timing enforces the minimum delay between a data line change (or sample)
// and the following clock edge.
type Timing interface {
	WaitSetupHold()
}

// TimingFunc adapts a plain function to Timing.
type TimingFunc func()

// WaitSetupHold calls f.
func (f TimingFunc) WaitSetupHold() { f() }

// noLock is used when the caller runs both contexts on one goroutine.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

var _ sync.Locker = noLock{}

// apply drives the lines as requested by the engine. Data changes first,
// then the setup/hold wait, then the clock edge, then any trailing data
// release.
func (b Bus) apply(a Action, t Timing) {
	drive(b.Data, a.Data)
	if a.Clock != Keep {
		t.WaitSetupHold()
		drive(b.Clock, a.Clock)
	}
	drive(b.Data, a.DataAfter)
}

func drive(l Line, d Drive) {
	switch d {
	case Low:
		l.Low()
	case Release:
		l.Release()
	}
}
