package wavesynth

import (
	"math"
	"testing"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		status, d1, d2 uint8
		expected       Message
	}{
		{0x90, 60, 100, Message{KindNoteOn, 0, 60, 100}},
		{0x83, 60, 0, Message{KindNoteOff, 3, 60, 0}},
		{0xA1, 61, 20, Message{KindPolyPressure, 1, 61, 20}},
		{0xBF, 7, 127, Message{KindControlChange, 15, 7, 127}},
		{0xC2, 5, 99, Message{KindProgramChange, 2, 5, 0}},
		{0xD0, 40, 99, Message{KindChannelPressure, 0, 40, 0}},
		{0xE4, 0, 64, Message{KindPitchBend, 4, 0, 64}},
		{0xF8, 1, 2, Message{KindUndefined, 0xF8, 1, 2}},
		{0x10, 1, 2, Message{KindUndefined, 0x10, 1, 2}},
	}
	for _, c := range cases {
		if got := Decode(c.status, c.d1, c.d2); got != c.expected {
			t.Fatalf("decode %#x: got %+v, expected %+v", c.status, got, c.expected)
		}
	}
}

func TestMessageString(t *testing.T) {
	if s := NoteOn(1, 60, 90).String(); s != "NoteOn: chan(1), note(60), vel(90)" {
		t.Fatalf("unexpected string: %s", s)
	}
	if s := Decode(0xE0, 0, 64).String(); s != "PitchBend: chan(0), pitch(8192)" {
		t.Fatalf("unexpected string: %s", s)
	}
}

func TestNoteFrequency(t *testing.T) {
	if f := NoteFrequency(69); f != 440 {
		t.Fatalf("A4 should be 440Hz, got %v", f)
	}
	if f := NoteFrequency(81); f != 880 {
		t.Fatalf("A5 should be 880Hz, got %v", f)
	}
	if f := NoteFrequency(60); math.Abs(float64(f)-261.6256) > 1e-3 {
		t.Fatalf("middle C should be about 261.63Hz, got %v", f)
	}
	for n := uint8(1); n < 128; n++ {
		if NoteFrequency(n) <= NoteFrequency(n-1) {
			t.Fatalf("note %d is not above note %d", n, n-1)
		}
	}
}
