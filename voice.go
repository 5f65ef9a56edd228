package wavesynth

// Voice is one note of polyphony: an oscillator, its envelope and the gate
// that triggers it.
type Voice struct {
	osc  *Phasor
	env  *Envelope
	gate *Gate

	level float32
	pitch float32
}

func NewVoice(sys SystemConfig, table *Wavetable, adsr ADSR) *Voice {
	gate := NewGate(0)
	return &Voice{
		osc:  table.NewPhasor(sys),
		env:  NewEnvelope(sys, adsr, gate),
		gate: gate,
	}
}

// NoteOn starts a note at the given level and pitch (in Hz). The oscillator
// restarts from phase zero so that repeated notes sound the same.
func (v *Voice) NoteOn(level, pitch float32) {
	v.pitch = pitch
	v.level = level
	v.osc.Zero()
	v.gate.Write(level)
}

func (v *Voice) NoteOff() {
	v.gate.Write(0)
}

// Render fills buf with the note, scaled by one control-rate envelope value
// and the note level.
func (v *Voice) Render(buf []float32) {
	v.osc.Render(buf, v.pitch, 0)
	amp := v.env.PerformControl() * v.level
	for i := range buf {
		buf[i] *= amp
	}
}

// Active reports whether the voice is sounding: either the note is held or
// the envelope has not finished its release.
func (v *Voice) Active() bool {
	return v.gate.IsOpen() || v.env.Stage() != StageDone
}

func (v *Voice) Pitch() float32 {
	return v.pitch
}

func (v *Voice) Level() float32 {
	return v.level
}

func (v *Voice) Stage() Stage {
	return v.env.Stage()
}

func (v *Voice) SetEnvelope(adsr ADSR) {
	v.env.SetADSR(adsr)
}
