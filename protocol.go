package ps2kbd

// Phase is the position of the engine within an 11 bit PS/2 frame.
// Every phase except PhaseIdle takes two ticks: a clock-high half in which
// the data line is set or sampled and the clock is pulled low, and a
// clock-low half in which the clock is released again.
type Phase uint8

const (
	PhaseIdle Phase = iota // arbitration, only acts while the clock is high
	PhaseStart
	PhaseData0
	PhaseData1
	PhaseData2
	PhaseData3
	PhaseData4
	PhaseData5
	PhaseData6
	PhaseData7
	PhaseParity
	PhaseStop // stop bit when sending, acknowledge bit when receiving
)

var phaseNames = [...]string{
	"idle", "start",
	"data0", "data1", "data2", "data3", "data4", "data5", "data6", "data7",
	"parity", "stop",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "invalid"
}

// Direction of the frame in progress.
type Direction uint8

const (
	Send    Direction = iota // keyboard to host
	Receive                  // host to keyboard
)

func (d Direction) String() string {
	if d == Receive {
		return "receive"
	}
	return "send"
}

// Drive is the requested state of one open-drain line.
type Drive uint8

const (
	Keep Drive = iota
	Low
	Release
)

// Sample is the level of both bus lines at the start of a tick.
type Sample struct {
	Clock bool
	Data  bool
}

// Action is what one tick does to the bus. Data is applied first, then
// the setup/hold delay and Clock when Clock is not Keep, then DataAfter.
type Action struct {
	Data      Drive
	Clock     Drive
	DataAfter Drive
}

// Stats counts engine events since reset.
type Stats struct {
	Sent         uint32 // frames sent to the host and dequeued
	Received     uint32 // host frames with valid parity
	ParityErrors uint32 // host frames dropped for bad parity
	Aborts       uint32 // frames abandoned because the host held the clock low
}

// Engine is the PS/2 device side bit engine. It is advanced once per half
// bit cell by Advance and owns no hardware; the caller samples the bus and
// applies the returned Action.
type Engine struct {
	out *Queue // bytes for the host, head is in flight while sending
	in  *Queue // bytes received from the host

	phase    Phase
	clockLow bool // clock output is low, next tick releases it
	dir      Direction
	shift    byte
	ones     uint8

	stats Stats
}

// NewEngine returns an idle engine moving bytes from out to the bus and
// from the bus to in.
func NewEngine(out, in *Queue) *Engine {
	return &Engine{out: out, in: in}
}

// Phase returns the current frame phase.
func (e *Engine) Phase() Phase { return e.phase }

// Direction returns the direction of the current or last frame.
func (e *Engine) Direction() Direction { return e.dir }

// Stats returns the event counters.
func (e *Engine) Stats() Stats { return e.stats }

// Reset returns the engine to arbitration. The line state is not touched.
func (e *Engine) Reset() {
	e.phase = PhaseIdle
	e.clockLow = false
	e.shift = 0
	e.ones = 0
}

// Advance runs one half bit cell given the sampled bus levels.
func (e *Engine) Advance(s Sample) Action {
	switch {
	case e.phase == PhaseIdle:
		e.arbitrate(s)
		return Action{}
	case e.clockLow:
		return e.rise()
	case e.phase == PhaseStop:
		// Some hosts pull the clock low straight after the parity bit,
		// so the terminator goes out without checking for inhibit.
		return e.terminate()
	case !s.Clock:
		return e.abort()
	}
	return e.bit(s)
}

// arbitrate decides whether a frame starts. A low clock means the host is
// inhibiting; a low data line with the clock released is a host request
// to send.
func (e *Engine) arbitrate(s Sample) {
	if !s.Clock {
		return
	}
	switch {
	case !s.Data:
		e.dir = Receive
		e.phase = PhaseStart
	case !e.out.Empty():
		e.dir = Send
		e.phase = PhaseStart
	}
}

// bit handles the clock-high half of the start, data and parity phases.
func (e *Engine) bit(s Sample) Action {
	var a Action

	switch e.phase {
	case PhaseStart:
		e.ones = 0
		if e.dir == Receive {
			e.shift = 0
			break
		}
		b, ok := e.out.Peek()
		if !ok {
			e.phase = PhaseIdle
			return Action{}
		}
		e.shift = b
		a.Data = Low
	case PhaseParity:
		if e.dir == Receive {
			e.receiveParity(s.Data)
			break
		}
		// Odd parity: the bit is set when the data has an even number of ones.
		if e.ones&1 == 1 {
			a.Data = Low
		} else {
			a.Data = Release
		}
	default:
		if e.dir == Receive {
			e.shift >>= 1
			if s.Data {
				e.shift |= 0x80
				e.ones++
			}
			break
		}
		if e.shift&0x01 != 0 {
			a.Data = Release
			e.ones++
		} else {
			a.Data = Low
		}
		e.shift >>= 1
	}

	a.Clock = Low
	e.clockLow = true
	return a
}

func (e *Engine) receiveParity(bit bool) {
	if (e.ones&1 == 1) == bit {
		e.stats.ParityErrors++
		return
	}
	// A host command pre-empts anything still waiting to be sent.
	e.out.Clear()
	e.in.Push(e.shift)
	e.stats.Received++
}

// terminate handles the clock-high half of PhaseStop.
func (e *Engine) terminate() Action {
	a := Action{Data: Release, Clock: Low}
	if e.dir == Receive {
		a.Data = Low
	}
	e.clockLow = true
	return a
}

// rise handles every clock-low half.
func (e *Engine) rise() Action {
	e.clockLow = false
	if e.phase != PhaseStop {
		e.phase++
		return Action{Clock: Release}
	}

	if e.dir == Send {
		e.out.Pop()
		e.stats.Sent++
	}
	e.phase = PhaseIdle
	return Action{Clock: Release, DataAfter: Release}
}

// abort gives the bus back to the host. The byte being sent stays queued.
func (e *Engine) abort() Action {
	e.phase = PhaseIdle
	e.stats.Aborts++
	return Action{Data: Release}
}
