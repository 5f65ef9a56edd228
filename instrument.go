package wavesynth

// Instrument is a fixed pool of voices sharing one wavetable.
//
// An Instrument is not safe for concurrent use; it belongs to the render
// goroutine. Other goroutines reach it through an Engine.
type Instrument struct {
	voices  []*Voice
	scratch []float32
}

func NewInstrument(sys SystemConfig, table *Wavetable, nvoices int, adsr ADSR) *Instrument {
	size := sys.BufferSize()
	if size <= 0 {
		size = 1
	}
	inst := &Instrument{
		voices:  make([]*Voice, 0, nvoices),
		scratch: make([]float32, size),
	}
	for i := 0; i < nvoices; i++ {
		inst.voices = append(inst.voices, NewVoice(sys, table, adsr))
	}
	return inst
}

// Render zeroes out and adds every active voice into it. Voices are summed,
// not averaged, so keeping the result within range is up to the caller.
func (inst *Instrument) Render(out []float32) {
	clear(out)
	for len(out) > 0 {
		n := min(len(out), len(inst.scratch))
		block := out[:n]
		scratch := inst.scratch[:n]
		for _, v := range inst.voices {
			if !v.Active() {
				continue
			}
			v.Render(scratch)
			for i := range block {
				block[i] += scratch[i]
			}
		}
		out = out[n:]
	}
}

// NoteOn starts a note on the first free voice. When every voice is busy
// the note is dropped.
// TODO: steal the oldest voice instead of dropping the note.
func (inst *Instrument) NoteOn(level, pitch float32) {
	for _, v := range inst.voices {
		if !v.Active() {
			v.NoteOn(level, pitch)
			return
		}
	}
}

// NoteOff releases every active voice playing pitch.
func (inst *Instrument) NoteOff(pitch float32) {
	for _, v := range inst.voices {
		if v.Active() && v.Pitch() == pitch {
			v.NoteOff()
		}
	}
}

// ApplyEvent plays note messages. A note-on with zero velocity is a
// note-off; every other kind of message is ignored.
func (inst *Instrument) ApplyEvent(msg Message) {
	switch msg.Kind {
	case KindNoteOff:
		inst.NoteOff(NoteFrequency(msg.Note()))
	case KindNoteOn:
		pitch := NoteFrequency(msg.Note())
		if msg.Velocity() == 0 {
			inst.NoteOff(pitch)
			return
		}
		inst.NoteOn(VelocityLevel(msg.Velocity()), pitch)
	}
}

// SetEnvelope changes the envelope settings of every voice.
func (inst *Instrument) SetEnvelope(adsr ADSR) {
	for _, v := range inst.voices {
		v.SetEnvelope(adsr)
	}
}

func (inst *Instrument) Voices() []*Voice {
	return inst.voices
}

// ActiveVoices counts the voices currently sounding.
func (inst *Instrument) ActiveVoices() int {
	var n int
	for _, v := range inst.voices {
		if v.Active() {
			n++
		}
	}
	return n
}
