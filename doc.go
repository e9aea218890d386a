// Package ps2kbd provides TinyGo firmware for a PS/2 keyboard built on an
// 8x8 switch matrix.
//
// The keyboard scans and debounces the matrix from the main loop and runs
// a bit-banged, bidirectional PS/2 device engine from a periodic timer
// interrupt. Both sides share one Keyboard value; the main loop takes a
// critical section around every change to the shared queues.
//
// # Features
//
//   - Scan code set 2 make/break codes, with 0xE0 prefixes for the cursor keys
//   - 20 scan debounce on every switch
//   - Host to keyboard commands: reset (0xFF), identify (0xF2), all others acknowledged
//   - Host inhibit during a transmission aborts the frame and retries it later
//   - 128 byte send and receive queues that drop the oldest byte when full
//
// # Hardware Connection
//
// Both PS/2 lines are open drain: the keyboard only ever pulls them low or
// releases them. The host provides the pull-ups (5kΩ typical).
//
//	PS/2 Pin | Function | Notes
//	---------|----------|---------------------------
//	1        | DATA     | Open drain
//	3        | GND      | Ground
//	4        | VCC      | 5V
//	5        | CLK      | Open drain, driven by keyboard
//
// Matrix rows are strobed low one at a time; columns need pull-ups.
//
// # Timing
//
// Tick must be called every half bit cell. A 40µs period gives a 12.5kHz
// clock, inside the 10 to 16.7kHz range hosts accept. Each tick waits
// DataToClockDelay between changing the data line and the clock edge.
//
// # Example Usage
//
//	package main
//
//	import (
//	    "machine"
//
//	    ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
//	)
//
//	func main() {
//	    kbd := ps2kbd.NewWithPins(ps2kbd.PinConfig{
//	        Clock: machine.GP16,
//	        Data:  machine.GP17,
//	        Rows:  [8]machine.Pin{machine.GP0, machine.GP1, ...},
//	        Cols:  [8]machine.Pin{machine.GP8, machine.GP9, ...},
//	    })
//
//	    startTimer(40, kbd.Tick) // board specific
//
//	    for {
//	        kbd.Poll()
//	    }
//	}
//
// The sim package runs the same Keyboard against a simulated bus and a
// reference host, and the capture package records bus traffic as pcap.
package ps2kbd
