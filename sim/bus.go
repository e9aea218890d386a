// Package sim runs a ps2kbd.Keyboard without hardware: a wired-AND model
// of the two PS/2 lines, a switch matrix, virtual time and a reference
// host that speaks the host side of the protocol at the bit level.
//
// Everything is stepped explicitly; nothing in the package starts a
// goroutine, so a Rig is deterministic.
package sim

import ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"

// Wire is an open-drain line with an external pull-up. It reads high
// unless one of the two sides pulls it low.
type Wire struct {
	device bool
	host   bool
}

// Level returns the level on the wire.
func (w *Wire) Level() bool {
	return !w.device && !w.host
}

// DeviceLow reports whether the keyboard is pulling the wire low.
func (w *Wire) DeviceLow() bool { return w.device }

// HostLow reports whether the host is pulling the wire low.
func (w *Wire) HostLow() bool { return w.host }

// Bus is the PS/2 cable.
type Bus struct {
	Clock Wire
	Data  Wire
}

// Idle reports whether both lines are high.
func (b *Bus) Idle() bool {
	return b.Clock.Level() && b.Data.Level()
}

// Device returns the keyboard's end of the cable.
func (b *Bus) Device() ps2kbd.Bus {
	return ps2kbd.Bus{
		Clock: deviceLine{&b.Clock},
		Data:  deviceLine{&b.Data},
	}
}

type deviceLine struct {
	w *Wire
}

func (l deviceLine) Low()      { l.w.device = true }
func (l deviceLine) Release()  { l.w.device = false }
func (l deviceLine) Get() bool { return l.w.Level() }
