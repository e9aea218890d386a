// Package capture stores PS/2 bus traffic as pcap files and decodes it
// with gopacket.
//
// Each packet is one frame: a direction byte followed by the 11 wire bits
// as a little-endian uint16, bit 0 being the start bit. Files use link
// type DLT_USER0 (147).
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	ps2kbd "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/sim"
)

// LinkTypePS2 is the pcap link type used for PS/2 captures.
const LinkTypePS2 = layers.LinkType(147)

const recordLen = 3

// LayerTypePS2 identifies a Frame layer.
var LayerTypePS2 = gopacket.RegisterLayerType(2147, gopacket.LayerTypeMetadata{
	Name:    "PS2",
	Decoder: gopacket.DecodeFunc(decodePS2),
})

// ErrShortFrame is returned when a record is shorter than a frame.
var ErrShortFrame = errors.New("capture: frame record too short")

// Frame is a PS/2 frame decoded by gopacket.
type Frame struct {
	layers.BaseLayer

	Dir  ps2kbd.Direction
	Bits uint16
}

// LayerType implements gopacket.Layer.
func (f *Frame) LayerType() gopacket.LayerType { return LayerTypePS2 }

// CanDecode implements gopacket.DecodingLayer.
func (f *Frame) CanDecode() gopacket.LayerClass { return LayerTypePS2 }

// NextLayerType implements gopacket.DecodingLayer.
func (f *Frame) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

// DecodeFromBytes implements gopacket.DecodingLayer.
func (f *Frame) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < recordLen {
		df.SetTruncated()
		return ErrShortFrame
	}
	if data[0] > byte(ps2kbd.Receive) {
		return fmt.Errorf("capture: unknown direction %d", data[0])
	}
	f.Dir = ps2kbd.Direction(data[0])
	f.Bits = binary.LittleEndian.Uint16(data[1:recordLen]) & (1<<sim.FrameBits - 1)
	f.BaseLayer = layers.BaseLayer{Contents: data[:recordLen], Payload: data[recordLen:]}
	return nil
}

// SerializeTo implements gopacket.SerializableLayer.
func (f *Frame) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	buf, err := b.PrependBytes(recordLen)
	if err != nil {
		return err
	}
	buf[0] = byte(f.Dir)
	binary.LittleEndian.PutUint16(buf[1:], f.Bits)
	return nil
}

// Sim returns the frame in the simulator's representation.
func (f *Frame) Sim() sim.Frame {
	return sim.Frame{Dir: f.Dir, Bits: f.Bits}
}

func (f *Frame) String() string {
	return f.Sim().String()
}

func decodePS2(data []byte, p gopacket.PacketBuilder) error {
	f := &Frame{}
	if err := f.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(f)
	if len(f.Payload) == 0 {
		return nil
	}
	return p.NextDecoder(gopacket.LayerTypePayload)
}
