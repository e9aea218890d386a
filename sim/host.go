package sim

import ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"

// RequestTicks is how long the host holds the clock low before a request
// to send, a little over the 100µs minimum.
const RequestTicks = 3

type hostState uint8

const (
	hostIdle     hostState = iota
	hostRequest            // clock held low before the start bit
	hostSending            // presenting bits on falling clock edges
	hostWaitAck            // stop bit presented, ack comes on the next falling edge
	hostWaitRise           // ack sampled, waiting for the clock to go high
)

// Host is a reference PS/2 host. It samples the keyboard's frames on
// falling clock edges and sends commands with the request-to-send
// sequence. Step must be called after every keyboard tick.
type Host struct {
	bus *Bus

	prevClock bool
	ticks     uint64

	rxBits  uint16
	rxCount int

	state   hostState
	wait    int
	tx      []byte
	txBits  uint16
	txIndex int
	ack     bool

	inhibited bool

	// Received holds every valid byte sent by the keyboard, in order.
	Received []byte
	// Frames holds every complete frame in either direction.
	Frames []Frame
	// Errors counts keyboard frames with a bad start, parity or stop bit.
	Errors int
	// Nacks counts host frames the keyboard did not acknowledge.
	Nacks int

	// OnFrame, if set, is called for every complete frame.
	OnFrame func(Frame)
}

// NewHost attaches a host to bus.
func NewHost(bus *Bus) *Host {
	return &Host{bus: bus, prevClock: bus.Clock.Level()}
}

// Send queues b for transmission to the keyboard.
func (h *Host) Send(b ...byte) {
	h.tx = append(h.tx, b...)
}

// Busy reports whether the host has bytes queued or a frame in progress.
func (h *Host) Busy() bool {
	return len(h.tx) > 0 || h.state != hostIdle
}

// Inhibit pulls the clock low, blocking the keyboard. Any partially
// received frame is discarded. A command frame cut off before its parity
// bit is abandoned and sent again after Resume; one that got as far as the
// stop bit has already been latched by the keyboard and counts as sent.
func (h *Host) Inhibit() {
	h.inhibited = true
	h.bus.Clock.host = true
	h.rxCount = 0
	h.rxBits = 0

	switch h.state {
	case hostRequest, hostSending:
		h.bus.Data.host = false
		h.state = hostIdle
	case hostWaitAck:
		h.bus.Data.host = false
		h.ack = true
		h.finishSend()
	case hostWaitRise:
		h.bus.Data.host = false
		h.finishSend()
	}
}

// Resume releases an inhibit.
func (h *Host) Resume() {
	h.inhibited = false
	if h.state == hostIdle {
		h.bus.Clock.host = false
	}
}

// Inhibited reports whether Inhibit is in effect.
func (h *Host) Inhibited() bool { return h.inhibited }

// Step observes the bus after a keyboard tick and reacts to it.
func (h *Host) Step() {
	h.ticks++

	clk := h.bus.Clock.Level()
	fell, rose := h.prevClock && !clk, !h.prevClock && clk
	h.prevClock = clk

	// Edges the host makes itself are not keyboard clocks.
	if h.bus.Clock.host {
		fell, rose = false, false
	}

	switch h.state {
	case hostIdle:
		if fell {
			h.receiveBit()
		}
		if len(h.tx) > 0 && !h.inhibited && h.rxCount == 0 {
			h.request()
		}
	case hostRequest:
		if h.wait--; h.wait > 0 {
			return
		}
		// Start bit, then hand the clock back to the keyboard.
		h.bus.Data.host = true
		h.bus.Clock.host = false
		h.prevClock = h.bus.Clock.Level()
		h.txIndex = 1
		h.state = hostSending
	case hostSending:
		if !fell {
			return
		}
		h.bus.Data.host = h.txBits&(1<<h.txIndex) == 0
		if h.txIndex++; h.txIndex == FrameBits {
			h.state = hostWaitAck
		}
	case hostWaitAck:
		if fell {
			h.ack = !h.bus.Data.Level()
			h.state = hostWaitRise
		}
	case hostWaitRise:
		if rose {
			h.finishSend()
		}
	}
}

func (h *Host) receiveBit() {
	if h.bus.Data.Level() {
		h.rxBits |= 1 << h.rxCount
	}
	if h.rxCount++; h.rxCount < FrameBits {
		return
	}

	f := Frame{Dir: ps2kbd.Send, Bits: h.rxBits, Tick: h.ticks}
	h.rxBits, h.rxCount = 0, 0
	if f.Valid() {
		h.Received = append(h.Received, f.Data())
	} else {
		h.Errors++
	}
	h.record(f)
}

func (h *Host) request() {
	h.txBits = EncodeFrame(h.tx[0], true)
	h.wait = RequestTicks
	h.bus.Clock.host = true
	h.state = hostRequest
}

func (h *Host) finishSend() {
	bits := h.txBits &^ (1 << 10)
	if !h.ack {
		bits |= 1 << 10
		h.Nacks++
	}
	h.tx = h.tx[1:]
	h.state = hostIdle
	h.record(Frame{Dir: ps2kbd.Receive, Bits: bits, Tick: h.ticks})
}

func (h *Host) record(f Frame) {
	h.Frames = append(h.Frames, f)
	if h.OnFrame != nil {
		h.OnFrame(f)
	}
}
