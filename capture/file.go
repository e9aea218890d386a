package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/afero"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/sim"
)

// ErrLinkType is returned when opening a pcap file that is not a PS/2 capture.
var ErrLinkType = errors.New("capture: not a PS/2 capture")

const snapLen = 64

// Writer appends frames to a pcap file.
type Writer struct {
	f     afero.File
	w     *pcapgo.Writer
	buf   gopacket.SerializeBuffer
	start time.Time
}

// Create creates name on fs and writes the pcap header. Frame ticks are
// converted to timestamps counting from start.
func Create(fs afero.Fs, name string, start time.Time) (*Writer, error) {
	f, err := fs.Create(name)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(snapLen, LinkTypePS2); err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: writing header: %w", err)
	}
	return &Writer{f: f, w: w, buf: gopacket.NewSerializeBuffer(), start: start}, nil
}

// WriteFrame appends one frame.
func (w *Writer) WriteFrame(f sim.Frame) error {
	if err := gopacket.SerializeLayers(w.buf, gopacket.SerializeOptions{}, &Frame{Dir: f.Dir, Bits: f.Bits}); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	data := w.buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     w.start.Add(time.Duration(f.Tick) * sim.TickPeriod),
		CaptureLength: len(data),
		Length:        len(data),
	}
	if err := w.w.WritePacket(ci, data); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Record is one frame read back from a capture. Frame.Tick is recovered
// from Time and the start passed to Open.
type Record struct {
	Time  time.Time
	Frame sim.Frame
}

// Reader reads frames from a pcap file.
type Reader struct {
	f     afero.File
	r     *pcapgo.Reader
	start time.Time
}

// Open opens a capture written by Writer. start must be the time the
// capture was created with for frame ticks to be recovered.
func Open(fs afero.Fs, name string, start time.Time) (*Reader, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: %w", err)
	}
	if r.LinkType() != LinkTypePS2 {
		f.Close()
		return nil, ErrLinkType
	}
	return &Reader{f: f, r: r, start: start}, nil
}

// Next returns the next frame, or io.EOF at the end of the file.
func (r *Reader) Next() (Record, error) {
	data, ci, err := r.r.ReadPacketData()
	if err != nil {
		return Record{}, err
	}

	pkt := gopacket.NewPacket(data, LayerTypePS2, gopacket.Default)
	if el := pkt.ErrorLayer(); el != nil {
		return Record{}, el.Error()
	}
	f, ok := pkt.Layer(LayerTypePS2).(*Frame)
	if !ok {
		return Record{}, ErrShortFrame
	}
	frame := f.Sim()
	frame.Tick = r.tick(ci.Timestamp)
	return Record{Time: ci.Timestamp, Frame: frame}, nil
}

// tick rounds to the nearest tick; pcap timestamps only keep microseconds.
func (r *Reader) tick(ts time.Time) uint64 {
	d := ts.Sub(r.start)
	if d < 0 {
		return 0
	}
	return uint64((d + sim.TickPeriod/2) / sim.TickPeriod)
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadAll returns every frame in the capture name.
func ReadAll(fs afero.Fs, name string, start time.Time) ([]Record, error) {
	r, err := Open(fs, name, start)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var recs []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}
