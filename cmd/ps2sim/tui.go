package main

import (
	"fmt"
	"log"
	"time"
	"unicode"

	"github.com/gdamore/tcell"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/sim"
)

const (
	frameInterval = 10 * time.Millisecond
	holdTicks     = 400
	logLines      = 12
)

type snapshot struct {
	down      [ps2kbd.MatrixRows][ps2kbd.MatrixCols]bool
	frames    []string
	stats     ps2kbd.Stats
	pending   int
	phase     ps2kbd.Phase
	inhibited bool
	elapsed   time.Duration
}

type hold struct {
	row, col int
	until    uint64
}

func runTerminal(rig *sim.Rig, sinks []func(sim.Frame)) {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err = screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	screen.HideCursor()
	screen.DisableMouse()
	screen.Clear()

	var frames []string
	rig.Host.OnFrame = fanOut(append(sinks, func(f sim.Frame) {
		frames = append(frames, f.String())
		if len(frames) > logLines {
			frames = frames[len(frames)-logLines:]
		}
	}))

	actions := make(chan func(), 16)
	quit := make(chan struct{})
	go simulate(rig, screen, actions, quit, &frames)
	defer close(quit)

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return
			}
			if a := keyAction(rig, ev); a != nil {
				actions <- a
			}
		case *tcell.EventInterrupt:
			if snap, ok := ev.Data().(snapshot); ok {
				draw(screen, snap)
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// keyAction maps a terminal key to a change made on the simulation
// goroutine.
func keyAction(rig *sim.Rig, ev *tcell.EventKey) func() {
	switch ev.Key() {
	case tcell.KeyF1:
		return func() { rig.Host.Send(ps2kbd.CmdReset) }
	case tcell.KeyF2:
		return func() { rig.Host.Send(ps2kbd.CmdIdentify) }
	case tcell.KeyF3:
		return func() { rig.Host.Send(ps2kbd.CmdSetLEDs, 0x07) }
	case tcell.KeyF4:
		return func() {
			if rig.Host.Inhibited() {
				rig.Host.Resume()
			} else {
				rig.Host.Inhibit()
			}
		}
	}

	var name string
	switch ev.Key() {
	case tcell.KeyEnter:
		name = "enter"
	case tcell.KeyLeft:
		name = "left"
	case tcell.KeyRight:
		name = "right"
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			name = "space"
		} else {
			name = string(unicode.ToLower(ev.Rune()))
		}
	default:
		return nil
	}

	code, ok := sim.KeyCode(name)
	if !ok {
		return nil
	}
	row, col, ok := ps2kbd.DefaultKeymap.Lookup(code)
	if !ok {
		return nil
	}
	return func() { rig.Matrix.Press(row, col) }
}

// simulate runs the rig in real time, applying actions between batches of
// ticks and posting a snapshot to the screen after each batch.
func simulate(rig *sim.Rig, screen tcell.Screen, actions <-chan func(), quit <-chan struct{}, frames *[]string) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	ticksPerFrame := int(frameInterval / sim.TickPeriod)
	var holds []hold

	for {
		select {
		case <-quit:
			return
		case a := <-actions:
			a()
			now := rig.Clock.Ticks()
			holds = holds[:0]
			for r := 0; r < ps2kbd.MatrixRows; r++ {
				for c := 0; c < ps2kbd.MatrixCols; c++ {
					if rig.Matrix.Pressed(r, c) {
						holds = append(holds, hold{r, c, now + holdTicks})
					}
				}
			}
		case <-ticker.C:
			rig.Run(ticksPerFrame)

			now := rig.Clock.Ticks()
			kept := holds[:0]
			for _, h := range holds {
				if now >= h.until {
					rig.Matrix.Release(h.row, h.col)
				} else {
					kept = append(kept, h)
				}
			}
			holds = kept

			snap := snapshot{
				frames:    append([]string(nil), (*frames)...),
				stats:     rig.Keyboard.Stats(),
				pending:   rig.Keyboard.Pending(),
				phase:     rig.Keyboard.Phase(),
				inhibited: rig.Host.Inhibited(),
				elapsed:   rig.Clock.Elapsed(),
			}
			for r := range snap.down {
				for c := range snap.down[r] {
					snap.down[r][c] = rig.Keyboard.IsDown(r, c)
				}
			}
			screen.PostEvent(tcell.NewEventInterrupt(snap))
		}
	}
}

func draw(s tcell.Screen, snap snapshot) {
	s.Clear()
	bold := tcell.StyleDefault.Bold(true)

	puts(s, 0, 0, bold, "PS/2 keyboard simulator  F1 reset  F2 identify  F3 LEDs  F4 inhibit  Esc quit")

	for r := range ps2kbd.DefaultKeymap {
		for c, code := range ps2kbd.DefaultKeymap[r] {
			label := "."
			if code != 0 {
				label = sim.KeyName(code)
			}
			style := tcell.StyleDefault
			if snap.down[r][c] {
				style = style.Reverse(true)
			}
			puts(s, 2+c*8, 2+r, style, fmt.Sprintf("%-7s", label))
		}
	}

	bus := "idle"
	if snap.inhibited {
		bus = "inhibited"
	}
	status := fmt.Sprintf("t=%v  phase=%v  pending=%d  bus=%s  sent=%d recv=%d parity=%d aborts=%d",
		snap.elapsed.Truncate(time.Millisecond), snap.phase, snap.pending, bus,
		snap.stats.Sent, snap.stats.Received, snap.stats.ParityErrors, snap.stats.Aborts)
	puts(s, 0, 3+ps2kbd.MatrixRows, bold, status)

	for i, f := range snap.frames {
		puts(s, 2, 5+ps2kbd.MatrixRows+i, tcell.StyleDefault, f)
	}
	s.Show()
}

func puts(s tcell.Screen, x, y int, style tcell.Style, str string) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
