// Command ps2sim runs the keyboard firmware against a simulated PS/2 host.
//
// With -script it replays a file of key presses and host commands and logs
// every frame on the bus. Without it, it opens a terminal view where typed
// keys are pressed on the simulated matrix.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/spf13/afero"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/capture"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/sim"
)

var (
	scriptFile  string
	captureFile string
	scanEvery   = sim.DefaultScanEvery
)

func init() {
	flag.StringVar(&scriptFile, "script", "", "Replay a script instead of opening the terminal view")
	flag.StringVar(&captureFile, "capture", "", "Write bus frames to a pcap file")
	flag.IntVar(&scanEvery, "scan-every", scanEvery, "Timer ticks per main loop iteration")
}

func main() {
	flag.Parse()

	if scanEvery < 1 {
		log.Fatal("scan-every must be at least 1")
	}

	fs := afero.NewOsFs()
	rig := sim.NewRig()
	rig.ScanEvery = scanEvery

	var frameSinks []func(sim.Frame)

	if captureFile != "" {
		w, err := capture.Create(fs, captureFile, time.Now())
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()

		frameSinks = append(frameSinks, func(f sim.Frame) {
			if err := w.WriteFrame(f); err != nil {
				log.Print(err)
			}
		})
	}

	if scriptFile == "" {
		runTerminal(rig, frameSinks)
		return
	}

	steps, err := loadScript(fs, scriptFile)
	if err != nil {
		log.Fatal(err)
	}

	var dec sim.Decoder
	frameSinks = append(frameSinks, func(f sim.Frame) {
		line := fmt.Sprintf("%10v  %v", time.Duration(f.Tick)*sim.TickPeriod, f)
		if f.Dir == ps2kbd.Send && f.Valid() {
			if ev, ok := dec.Feed(f.Data()); ok {
				line += "  " + ev.String()
			}
		}
		log.Print(line)
	})
	rig.Host.OnFrame = fanOut(frameSinks)

	if err := runScript(rig, steps); err != nil {
		log.Print(err)
	}

	s := rig.Keyboard.Stats()
	log.Printf("sent %d, received %d, parity errors %d, aborts %d, host errors %d",
		s.Sent, s.Received, s.ParityErrors, s.Aborts, rig.Host.Errors)
}

func fanOut(sinks []func(sim.Frame)) func(sim.Frame) {
	return func(f sim.Frame) {
		for _, s := range sinks {
			s(f)
		}
	}
}
