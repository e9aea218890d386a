package ps2kbd

import "sync"

const debug = false

// Config describes the hardware the keyboard runs on. Bus and Matrix are
// required; the rest have defaults.
type Config struct {
	Bus    Bus
	Matrix Matrix

	// Timing enforces the data-to-clock delay. Defaults to no delay.
	Timing Timing

	// Lock guards state shared between Tick and the main loop. On
	// hardware it must mask the tick interrupt. Defaults to no locking,
	// which is only correct when both run on the same goroutine.
	Lock sync.Locker

	// Keymap defaults to DefaultKeymap.
	Keymap *Keymap

	// Debounce is the debounce interval in scans. Defaults to
	// DebounceCycles.
	Debounce uint8
}

// Keyboard is the complete device state shared by the tick context (Tick)
// and the main loop (Scan, ProcessCommand).
type Keyboard struct {
	bus    Bus
	matrix Matrix
	timing Timing
	lock   sync.Locker

	keymap   *Keymap
	debounce uint8
	switches [MatrixRows][MatrixCols]keySwitch

	out    Queue
	in     Queue
	engine *Engine
}

// New creates a keyboard with every switch released, empty queues and the
// engine idle. The bus lines are released.
func New(cfg Config) *Keyboard {
	k := &Keyboard{
		bus:      cfg.Bus,
		matrix:   cfg.Matrix,
		timing:   cfg.Timing,
		lock:     cfg.Lock,
		keymap:   cfg.Keymap,
		debounce: cfg.Debounce,
	}

	if k.timing == nil {
		k.timing = TimingFunc(func() {})
	}
	if k.lock == nil {
		k.lock = noLock{}
	}
	if k.keymap == nil {
		k.keymap = &DefaultKeymap
	}
	if k.debounce == 0 {
		k.debounce = DebounceCycles
	}

	for r := range k.switches {
		for c := range k.switches[r] {
			k.switches[r][c].released = true
		}
	}
	k.engine = NewEngine(&k.out, &k.in)

	k.bus.Clock.Release()
	k.bus.Data.Release()
	return k
}

// Tick advances the protocol engine by one half bit cell. Register it on a
// periodic timer of about 40µs. It never blocks beyond the setup/hold
// delay and does not allocate.
func (k *Keyboard) Tick() {
	k.lock.Lock()
	a := k.engine.Advance(k.bus.Sample())
	k.bus.apply(a, k.timing)
	k.lock.Unlock()
}

// Poll runs one iteration of the main loop: a matrix scan followed by at
// most one host command.
func (k *Keyboard) Poll() {
	k.Scan()
	k.ProcessCommand()
}

// Pending returns the number of bytes waiting to be sent to the host,
// including one that may be on the wire.
func (k *Keyboard) Pending() int {
	k.lock.Lock()
	n := k.out.Len()
	k.lock.Unlock()
	return n
}

// Stats returns the protocol engine counters.
func (k *Keyboard) Stats() Stats {
	k.lock.Lock()
	s := k.engine.Stats()
	k.lock.Unlock()
	return s
}

// Phase returns the protocol engine's current phase.
func (k *Keyboard) Phase() Phase {
	k.lock.Lock()
	p := k.engine.Phase()
	k.lock.Unlock()
	return p
}
