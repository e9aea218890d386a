package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/afero"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/sim"
)

var epoch = time.Unix(1700000000, 0)

func TestCaptureResetExchange(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := Create(fs, "reset.pcap", epoch)
	if err != nil {
		t.Fatal(err)
	}

	r := sim.NewRig()
	var werr error
	r.Host.OnFrame = func(f sim.Frame) {
		if err := w.WriteFrame(f); err != nil && werr == nil {
			werr = err
		}
	}
	if err := r.Command(ps2kbd.CmdReset); err != nil {
		t.Fatal(err)
	}
	if werr != nil {
		t.Fatal(werr)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := ReadAll(fs, "reset.pcap", epoch)
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		dir  ps2kbd.Direction
		data byte
	}{
		{ps2kbd.Receive, 0xFF},
		{ps2kbd.Send, 0xFA},
		{ps2kbd.Send, 0xAA},
	}
	if len(recs) != len(want) {
		t.Fatalf("read %d frames, want %d", len(recs), len(want))
	}
	for i, rec := range recs {
		if rec.Frame.Dir != want[i].dir || rec.Frame.Data() != want[i].data {
			t.Errorf("frame %d = %v, want %v %02X", i, rec.Frame, want[i].dir, want[i].data)
		}
		if !rec.Frame.Valid() {
			t.Errorf("frame %d invalid: %011b", i, rec.Frame.Bits)
		}
		if rec.Frame != r.Host.Frames[i] {
			t.Errorf("frame %d = %+v, host saw %+v", i, rec.Frame, r.Host.Frames[i])
		}
		at := epoch.Add(time.Duration(r.Host.Frames[i].Tick) * sim.TickPeriod)
		if !rec.Time.Equal(at) {
			t.Errorf("frame %d at %v, want %v", i, rec.Time, at)
		}
	}
}

func TestCaptureTicksSurviveMicrosecondTimestamps(t *testing.T) {
	fs := afero.NewMemMapFs()
	start := epoch.Add(700 * time.Nanosecond)
	w, err := Create(fs, "ticks.pcap", start)
	if err != nil {
		t.Fatal(err)
	}
	frames := []sim.Frame{
		{Dir: ps2kbd.Send, Bits: sim.EncodeFrame(0x1E, true), Tick: 0},
		{Dir: ps2kbd.Receive, Bits: sim.EncodeFrame(0xF2, false), Tick: 12345},
		{Dir: ps2kbd.Send, Bits: sim.EncodeFrame(0xFA, true), Tick: 12346},
	}
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	recs, err := ReadAll(fs, "ticks.pcap", start)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != len(frames) {
		t.Fatalf("read %d frames, want %d", len(recs), len(frames))
	}
	for i, rec := range recs {
		if rec.Frame != frames[i] {
			t.Errorf("frame %d = %+v, want %+v", i, rec.Frame, frames[i])
		}
	}
}

func TestDecodeLayer(t *testing.T) {
	bits := sim.EncodeFrame(0x1E, true)
	data := []byte{byte(ps2kbd.Send), byte(bits), byte(bits >> 8)}

	pkt := gopacket.NewPacket(data, LayerTypePS2, gopacket.Default)
	f, ok := pkt.Layer(LayerTypePS2).(*Frame)
	if !ok {
		t.Fatalf("no PS2 layer in %v", pkt)
	}
	if f.Dir != ps2kbd.Send || f.Bits != bits {
		t.Errorf("decoded %v %011b", f.Dir, f.Bits)
	}
	if got := f.String(); got != "kbd->host 1E" {
		t.Errorf("String() = %q", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{0x00, 0x3C}},
		{"bad direction", []byte{0x07, 0x3C, 0x06}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := gopacket.NewPacket(tt.data, LayerTypePS2, gopacket.Default)
			if pkt.ErrorLayer() == nil {
				t.Error("expected a decode error")
			}
		})
	}
}

func TestOpenRejectsOtherLinkTypes(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("eth.pcap")
	if err != nil {
		t.Fatal(err)
	}
	if err := pcapgo.NewWriter(f).WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := Open(fs, "eth.pcap", epoch); !errors.Is(err, ErrLinkType) {
		t.Errorf("Open() error = %v, want ErrLinkType", err)
	}
	if _, err := Open(fs, "missing.pcap", epoch); err == nil {
		t.Error("Open() of missing file succeeded")
	}
}
