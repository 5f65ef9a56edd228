package wavesynth

import (
	"fmt"
	"math"
)

// Kind identifies a channel voice message.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNoteOff
	KindNoteOn
	KindPolyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend
)

const (
	statusNoteOff         = 0x80
	statusNoteOn          = 0x90
	statusPolyPressure    = 0xA0
	statusControlChange   = 0xB0
	statusProgramChange   = 0xC0
	statusChannelPressure = 0xD0
	statusPitchBend       = 0xE0
)

// Message is a decoded MIDI channel message. Data1 and Data2 hold the note
// and velocity for note messages, the controller and value for control
// changes, and the lsb and msb of a pitch bend.
type Message struct {
	Kind    Kind
	Channel uint8
	Data1   uint8
	Data2   uint8
}

func NoteOn(channel, note, velocity uint8) Message {
	return Message{Kind: KindNoteOn, Channel: channel, Data1: note, Data2: velocity}
}

func NoteOff(channel, note, velocity uint8) Message {
	return Message{Kind: KindNoteOff, Channel: channel, Data1: note, Data2: velocity}
}

func (m Message) Note() uint8 {
	return m.Data1
}

func (m Message) Velocity() uint8 {
	return m.Data2
}

func (m Message) String() string {
	switch m.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn: chan(%d), note(%d), vel(%d)", m.Channel, m.Data1, m.Data2)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff: chan(%d), note(%d), vel(%d)", m.Channel, m.Data1, m.Data2)
	case KindPolyPressure:
		return fmt.Sprintf("PolyPressure: chan(%d), note(%d), vel(%d)", m.Channel, m.Data1, m.Data2)
	case KindControlChange:
		return fmt.Sprintf("ControlChange: chan(%d), ctrl(%d), val(%d)", m.Channel, m.Data1, m.Data2)
	case KindProgramChange:
		return fmt.Sprintf("ProgramChange: chan(%d), prog(%d)", m.Channel, m.Data1)
	case KindChannelPressure:
		return fmt.Sprintf("ChannelPressure: chan(%d), vel(%d)", m.Channel, m.Data1)
	case KindPitchBend:
		return fmt.Sprintf("PitchBend: chan(%d), pitch(%d)", m.Channel, uint16(m.Data1)|uint16(m.Data2)<<7)
	default:
		return fmt.Sprintf("Undefined: status(%#x), %d, %d", m.Channel, m.Data1, m.Data2)
	}
}

// Decode maps raw MIDI bytes to a Message. For undefined statuses the full
// status byte is kept in Channel.
func Decode(status, data1, data2 uint8) Message {
	m := Message{Channel: status & 0x0F, Data1: data1, Data2: data2}
	switch status & 0xF0 {
	case statusNoteOff:
		m.Kind = KindNoteOff
	case statusNoteOn:
		m.Kind = KindNoteOn
	case statusPolyPressure:
		m.Kind = KindPolyPressure
	case statusControlChange:
		m.Kind = KindControlChange
	case statusProgramChange:
		m.Kind = KindProgramChange
		m.Data2 = 0
	case statusChannelPressure:
		m.Kind = KindChannelPressure
		m.Data2 = 0
	case statusPitchBend:
		m.Kind = KindPitchBend
	default:
		m.Kind = KindUndefined
		m.Channel = status
	}
	return m
}

var equalTemperament = func() (t [128]float32) {
	for i := range t {
		t[i] = float32(440 * math.Pow(2, (float64(i)-69)/12))
	}
	return t
}()

// NoteFrequency maps a MIDI note number to its equal-tempered frequency
// with A4 (note 69) at 440Hz.
func NoteFrequency(note uint8) float32 {
	return equalTemperament[note&0x7F]
}

// VelocityLevel maps a MIDI velocity to a note level on a perceptual curve.
func VelocityLevel(velocity uint8) float32 {
	return float32(1 - math.Exp(float64(127-int(velocity))/64)/8)
}
