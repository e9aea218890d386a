package ps2kbd

import (
	"bytes"
	"testing"
)

func TestReply(t *testing.T) {
	tests := []struct {
		name string
		cmd  byte
		want []byte
	}{
		{"reset", CmdReset, []byte{0xFA, 0xAA}},
		{"identify", CmdIdentify, []byte{0xFA, 0xAB, 0x83}},
		{"set leds", CmdSetLEDs, []byte{0xFA}},
		{"led data", 0x07, []byte{0xFA}},
		{"echo", 0xEE, []byte{0xFA}},
		{"enable", 0xF4, []byte{0xFA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reply(tt.cmd); !bytes.Equal(got, tt.want) {
				t.Errorf("Reply(0x%02X) = % X, want % X", tt.cmd, got, tt.want)
			}
		})
	}
}

func TestProcessCommand(t *testing.T) {
	k, _ := newTestKeyboard(Config{})

	if _, ok := k.ProcessCommand(); ok {
		t.Fatal("ProcessCommand with empty queue reported a command")
	}

	// Set LEDs and its data byte are acknowledged one at a time.
	k.in.Push(CmdSetLEDs)
	k.in.Push(0x02)
	k.in.Push(CmdIdentify)

	var cmds []byte
	for {
		cmd, ok := k.ProcessCommand()
		if !ok {
			break
		}
		cmds = append(cmds, cmd)
	}

	if want := []byte{CmdSetLEDs, 0x02, CmdIdentify}; !bytes.Equal(cmds, want) {
		t.Errorf("processed % X, want % X", cmds, want)
	}
	want := []byte{0xFA, 0xFA, 0xFA, 0xAB, 0x83}
	if got := drain(&k.out); !bytes.Equal(got, want) {
		t.Errorf("replies % X, want % X", got, want)
	}
}

func TestProcessCommandOnePerCall(t *testing.T) {
	k, _ := newTestKeyboard(Config{})
	k.in.Push(CmdReset)
	k.in.Push(CmdReset)

	k.Poll()
	if got := drain(&k.out); !bytes.Equal(got, []byte{0xFA, 0xAA}) {
		t.Errorf("after one poll: % X", got)
	}
	if k.in.Len() != 1 {
		t.Errorf("inbound length %d, want 1", k.in.Len())
	}
}
