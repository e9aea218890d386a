package sim

import "time"

// TickPeriod is the simulated timer interrupt period, half a PS/2 bit cell.
const TickPeriod = 40 * time.Microsecond

// Clock is virtual time. It advances one TickPeriod per tick; the
// setup/hold delays are counted but take no time of their own since they
// fall inside a tick.
type Clock struct {
	ticks uint64
	waits uint64
}

// WaitSetupHold implements ps2kbd.Timing.
func (c *Clock) WaitSetupHold() {
	c.waits++
}

// Advance moves time forward by one tick.
func (c *Clock) Advance() {
	c.ticks++
}

// Ticks returns the number of ticks so far.
func (c *Clock) Ticks() uint64 { return c.ticks }

// Waits returns the number of setup/hold delays requested so far.
func (c *Clock) Waits() uint64 { return c.waits }

// Elapsed returns the simulated time since start.
func (c *Clock) Elapsed() time.Duration {
	return time.Duration(c.ticks) * TickPeriod
}
