package main

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/sim"
)

type opcode int

const (
	opPress opcode = iota
	opRelease
	opTap
	opSend
	opWait
	opInhibit
	opResume
)

type step struct {
	line     int
	op       opcode
	row, col int
	value    int
}

// loadScript reads and parses a script file.
func loadScript(fs afero.Fs, name string) ([]step, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	return parseScript(data)
}

func parseScript(data []byte) ([]step, error) {
	var steps []step

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		s, err := parseStep(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		s.line = n
		steps = append(steps, s)
	}
	return steps, sc.Err()
}

func parseStep(fields []string) (step, error) {
	args := fields[1:]
	switch cmd := strings.ToLower(fields[0]); cmd {
	case "press", "release", "tap":
		if len(args) != 2 {
			return step{}, fmt.Errorf("%s needs a row and a column", cmd)
		}
		row, err := parseIndex(args[0], ps2kbd.MatrixRows)
		if err != nil {
			return step{}, err
		}
		col, err := parseIndex(args[1], ps2kbd.MatrixCols)
		if err != nil {
			return step{}, err
		}
		op := map[string]opcode{"press": opPress, "release": opRelease, "tap": opTap}[cmd]
		return step{op: op, row: row, col: col}, nil
	case "key":
		if len(args) != 1 {
			return step{}, fmt.Errorf("key needs a key name")
		}
		code, ok := sim.KeyCode(args[0])
		if !ok {
			return step{}, fmt.Errorf("unknown key %q", args[0])
		}
		row, col, ok := ps2kbd.DefaultKeymap.Lookup(code)
		if !ok {
			return step{}, fmt.Errorf("key %q is not on this keyboard", args[0])
		}
		return step{op: opTap, row: row, col: col}, nil
	case "send":
		if len(args) != 1 {
			return step{}, fmt.Errorf("send needs a byte")
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args[0]), "0x"), 16, 8)
		if err != nil {
			return step{}, fmt.Errorf("bad byte %q", args[0])
		}
		return step{op: opSend, value: int(v)}, nil
	case "wait":
		if len(args) != 1 {
			return step{}, fmt.Errorf("wait needs a tick count")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return step{}, fmt.Errorf("bad tick count %q", args[0])
		}
		return step{op: opWait, value: v}, nil
	case "inhibit":
		return step{op: opInhibit}, nil
	case "resume":
		return step{op: opResume}, nil
	default:
		return step{}, fmt.Errorf("unknown directive %q", fields[0])
	}
}

func parseIndex(s string, limit int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v >= limit {
		return 0, fmt.Errorf("bad matrix index %q", s)
	}
	return v, nil
}

// runScript executes steps against r and then lets the bus settle.
func runScript(r *sim.Rig, steps []step) error {
	for _, s := range steps {
		switch s.op {
		case opPress:
			r.Matrix.Press(s.row, s.col)
			r.Run(r.DebounceTicks())
		case opRelease:
			r.Matrix.Release(s.row, s.col)
			r.Run(r.DebounceTicks())
		case opTap:
			r.Tap(s.row, s.col)
		case opSend:
			if r.Host.Inhibited() {
				return fmt.Errorf("line %d: send while inhibited", s.line)
			}
			if err := r.Command(byte(s.value)); err != nil {
				return fmt.Errorf("line %d: %w", s.line, err)
			}
		case opWait:
			r.Run(s.value)
		case opInhibit:
			r.Host.Inhibit()
		case opResume:
			r.Host.Resume()
		}
	}
	if r.Host.Inhibited() {
		return nil
	}
	return r.Settle()
}
