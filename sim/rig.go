package sim

import (
	"errors"
	"sync"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
)

// ErrTimeout is returned when a condition is not met within the tick limit.
var ErrTimeout = errors.New("sim: timed out")

// DefaultScanEvery is the number of ticks per main loop iteration. Eight
// strobes with a 10µs settle each take a little over two ticks of real
// time on the target.
const DefaultScanEvery = 4

// DefaultLimit bounds RunUntil when no limit is given.
const DefaultLimit = 100000

// Rig is a keyboard wired to a simulated matrix, bus and host.
type Rig struct {
	Bus      *Bus
	Matrix   *Matrix
	Host     *Host
	Clock    *Clock
	Keyboard *ps2kbd.Keyboard

	// ScanEvery is the number of ticks between calls to Keyboard.Poll.
	ScanEvery int
}

// NewRig builds a rig with an idle bus and every key released.
func NewRig() *Rig {
	r := &Rig{
		Bus:       &Bus{},
		Matrix:    NewMatrix(),
		Clock:     &Clock{},
		ScanEvery: DefaultScanEvery,
	}
	r.Keyboard = ps2kbd.New(ps2kbd.Config{
		Bus:    r.Bus.Device(),
		Matrix: r.Matrix,
		Timing: r.Clock,
		Lock:   &sync.Mutex{},
	})
	r.Host = NewHost(r.Bus)
	return r
}

// Tick advances the simulation by one timer period: the keyboard's tick,
// the host's reaction and, every ScanEvery ticks, one main loop pass.
func (r *Rig) Tick() {
	r.Keyboard.Tick()
	r.Clock.Advance()
	r.Host.Step()
	if r.ScanEvery > 0 && r.Clock.Ticks()%uint64(r.ScanEvery) == 0 {
		r.Keyboard.Poll()
	}
}

// Run ticks n times.
func (r *Rig) Run(n int) {
	for i := 0; i < n; i++ {
		r.Tick()
	}
}

// RunUntil ticks until done returns true, for at most limit ticks
// (DefaultLimit if limit is zero).
func (r *Rig) RunUntil(done func() bool, limit int) error {
	if limit <= 0 {
		limit = DefaultLimit
	}
	for i := 0; i < limit; i++ {
		if done() {
			return nil
		}
		r.Tick()
	}
	if done() {
		return nil
	}
	return ErrTimeout
}

// Settle runs until the keyboard has nothing to send, the host is idle
// and the bus is released.
func (r *Rig) Settle() error {
	return r.RunUntil(func() bool {
		return r.Keyboard.Pending() == 0 && !r.Host.Busy() &&
			r.Keyboard.Phase() == ps2kbd.PhaseIdle && r.Bus.Idle()
	}, 0)
}

// DebounceTicks is the number of ticks after which a held switch has
// certainly been confirmed.
func (r *Rig) DebounceTicks() int {
	return (ps2kbd.DebounceCycles + 2) * r.ScanEvery
}

// Tap presses and releases the switch at row, col, holding each state
// long enough to be debounced.
func (r *Rig) Tap(row, col int) {
	r.Matrix.Press(row, col)
	r.Run(r.DebounceTicks())
	r.Matrix.Release(row, col)
	r.Run(r.DebounceTicks())
}

// Command sends each byte to the keyboard in turn, waiting after each for
// the keyboard to finish sending its response.
func (r *Rig) Command(bs ...byte) error {
	for _, b := range bs {
		r.Host.Send(b)
		if err := r.RunUntil(func() bool { return !r.Host.Busy() }, 0); err != nil {
			return err
		}
		// Give the main loop a chance to pick up the command.
		r.Run(2 * r.ScanEvery)
		if err := r.Settle(); err != nil {
			return err
		}
	}
	return nil
}
