//go:build tinygo && !rp2040

package ps2kbd

import "machine"

// Targets without a direction register wrapper fall back to reconfiguring
// the pin. The output latch keeps the low level set by latchLow.
func (p openDrain) Low() {
	machine.Pin(p).Configure(machine.PinConfig{Mode: machine.PinOutput})
}

func (p openDrain) Release() {
	machine.Pin(p).Configure(machine.PinConfig{Mode: machine.PinInput})
}
