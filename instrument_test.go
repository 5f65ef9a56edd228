package wavesynth

import (
	"math"
	"testing"
)

func testInstrument(nvoices int, adsr ADSR) (*Instrument, SystemConfig, *Wavetable) {
	sys := NewSystemConfig(4, 4, 4)
	table := MustWavetable(GenerateTable(sineOsc, 64))
	return NewInstrument(sys, table, nvoices, adsr), sys, table
}

func TestVoiceActive(t *testing.T) {
	sys := NewSystemConfig(4, 4, 4)
	v := NewVoice(sys, MustWavetable(GenerateRamp(8)), ADSR{0, 0, 1, 1})
	if v.Active() {
		t.Fatal("new voice should be inactive")
	}

	v.NoteOn(0.5, 440)
	if !v.Active() {
		t.Fatal("voice should be active once triggered")
	}
	if v.Pitch() != 440 || v.Level() != 0.5 {
		t.Fatalf("unexpected pitch/level: %v/%v", v.Pitch(), v.Level())
	}

	buf := make([]float32, 4)
	v.Render(buf)
	v.NoteOff()
	if !v.Active() {
		t.Fatal("voice should stay active through its release")
	}

	// a one second release is a single four sample block: one render
	// starts it, the next finishes it
	for i := 0; i < 3; i++ {
		v.Render(buf)
	}
	if v.Active() {
		t.Fatalf("voice should be done after its release, stage %s", v.Stage())
	}
}

func TestVoiceRenderScalesByLevel(t *testing.T) {
	sys := NewSystemConfig(4, 4, 4)
	table := MustWavetable(GenerateTable(sawOsc, 16))
	v := NewVoice(sys, table, ADSR{0, 0, 1, 0})

	raw := make([]float32, 4)
	table.NewPhasor(sys).Render(raw, 1, 0)

	v.NoteOn(0.25, 1)
	buf := make([]float32, 4)
	v.Render(buf)
	for i := range buf {
		if !approxEqual(buf[i], raw[i]*0.25) {
			t.Fatalf("sample %d: got %v, expected %v", i, buf[i], raw[i]*0.25)
		}
	}
}

func TestInstrumentEndToEnd(t *testing.T) {
	inst, sys, table := testInstrument(2, ADSR{0, 0, 1, 0})

	raw := make([]float32, 4)
	table.NewPhasor(sys).Render(raw, 440, 0)

	inst.NoteOn(1, 440)
	out := make([]float32, 4)
	inst.Render(out)
	for i := range out {
		if out[i] != raw[i] {
			t.Fatalf("sample %d: got %v, expected raw waveform %v", i, out[i], raw[i])
		}
	}

	inst.NoteOff(440)
	inst.Render(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d after note off: got %v, expected 0", i, v)
		}
	}
}

func TestInstrumentPoolExhaustion(t *testing.T) {
	inst, _, _ := testInstrument(3, ADSR{1, 1, 0.5, 1})

	pitches := []float32{220, 330, 440}
	for i, p := range pitches {
		inst.NoteOn(float32(i+1)/4, p)
	}
	if n := inst.ActiveVoices(); n != 3 {
		t.Fatalf("expected 3 active voices, got %d", n)
	}

	inst.NoteOn(1, 880)
	for i, v := range inst.Voices() {
		if v.Pitch() != pitches[i] || v.Level() != float32(i+1)/4 {
			t.Fatalf("voice %d was disturbed: pitch %v level %v", i, v.Pitch(), v.Level())
		}
	}
}

func TestInstrumentNoteOffMatchesPitch(t *testing.T) {
	inst, _, _ := testInstrument(4, ADSR{0, 0, 1, 1})

	inst.NoteOn(1, 440)
	inst.NoteOn(1, 330)
	inst.NoteOn(1, 440)

	out := make([]float32, 4)
	inst.Render(out)

	inst.NoteOff(440)
	voices := inst.Voices()
	if voices[0].gate.IsOpen() || voices[2].gate.IsOpen() {
		t.Fatal("both 440Hz voices should be released")
	}
	if !voices[1].gate.IsOpen() {
		t.Fatal("330Hz voice should still be held")
	}
	if voices[3].Active() {
		t.Fatal("unused voice should stay inactive")
	}

	// no match is a no-op
	inst.NoteOff(100)
	if !voices[1].gate.IsOpen() {
		t.Fatal("330Hz voice should still be held")
	}
}

func TestInstrumentReusesReleasedVoice(t *testing.T) {
	inst, _, _ := testInstrument(1, ADSR{0, 0, 1, 0})
	out := make([]float32, 4)

	inst.NoteOn(1, 440)
	inst.Render(out)
	inst.NoteOff(440)
	inst.Render(out)
	inst.Render(out)
	if inst.ActiveVoices() != 0 {
		t.Fatal("voice should be free after its release")
	}

	inst.NoteOn(1, 220)
	if inst.Voices()[0].Pitch() != 220 {
		t.Fatal("released voice should be reused")
	}
}

func TestInstrumentRenderSumsVoices(t *testing.T) {
	inst, sys, table := testInstrument(2, ADSR{0, 0, 1, 0})

	raw := make([]float32, 4)
	table.NewPhasor(sys).Render(raw, 1, 0)

	inst.NoteOn(1, 1)
	inst.NoteOn(1, 1)

	// longer than the scratch buffer
	out := make([]float32, 8)
	fill(out, 9)
	inst.Render(out)
	for i := range raw {
		if !approxEqual(out[i], 2*raw[i]) {
			t.Fatalf("sample %d: got %v, expected %v", i, out[i], 2*raw[i])
		}
	}
}

func TestApplyEvent(t *testing.T) {
	inst, _, _ := testInstrument(2, ADSR{0, 0, 1, 0})
	voices := inst.Voices()

	inst.ApplyEvent(NoteOn(0, 69, 127))
	if voices[0].Pitch() != 440 {
		t.Fatalf("note 69 should play 440Hz, got %v", voices[0].Pitch())
	}
	if !approxEqual(voices[0].Level(), 0.875) {
		t.Fatalf("velocity 127 should give level 0.875, got %v", voices[0].Level())
	}

	// velocity zero note-on releases
	inst.ApplyEvent(NoteOn(0, 69, 0))
	if voices[0].gate.IsOpen() {
		t.Fatal("zero velocity note-on should release the note")
	}

	// the released voice was never rendered, so it is free again
	inst.ApplyEvent(NoteOn(0, 60, 64))
	if voices[0].Pitch() != NoteFrequency(60) || !voices[0].gate.IsOpen() {
		t.Fatal("note 60 should take the first free voice")
	}
	inst.ApplyEvent(NoteOff(0, 60, 64))
	if voices[0].gate.IsOpen() {
		t.Fatal("note-off should release the note")
	}

	// ignored
	inst.ApplyEvent(Decode(0xB0, 1, 1))
	inst.ApplyEvent(Decode(0xE0, 0, 64))
}

func TestSetEnvelopeAllVoices(t *testing.T) {
	inst, sys, _ := testInstrument(3, ADSR{0, 0, 1, 0})
	inst.SetEnvelope(ADSR{1, 2, 0.5, 3})
	for i, v := range inst.Voices() {
		if v.env.attack != sys.Samples(1) || v.env.decay != sys.Samples(2) ||
			v.env.sustain != 0.5 || v.env.release != sys.Samples(3) {
			t.Fatalf("voice %d envelope not updated", i)
		}
	}
}

func TestVelocityLevel(t *testing.T) {
	prev := float32(math.Inf(-1))
	for vel := 1; vel <= 127; vel++ {
		l := VelocityLevel(uint8(vel))
		if l <= 0 || l >= 1 {
			t.Fatalf("velocity %d gave level %v outside (0, 1)", vel, l)
		}
		if l <= prev {
			t.Fatalf("velocity curve not increasing at %d", vel)
		}
		prev = l
	}
}
