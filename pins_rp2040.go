//go:build rp2040

package ps2kbd

import "device/rp"

// The pin's function is SIO after latchLow, so only the output enable bit
// changes.
func (p openDrain) Low() {
	rp.SIO.GPIO_OE_SET.Set(1 << uint32(p))
}

func (p openDrain) Release() {
	rp.SIO.GPIO_OE_CLR.Set(1 << uint32(p))
}
