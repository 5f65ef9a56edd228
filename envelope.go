package wavesynth

import "fmt"

type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ADSR holds envelope settings. Attack, Decay and Release are in seconds,
// Sustain is a level that should be within [0, 1].
type ADSR struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// Envelope is a linear attack/decay/sustain/release generator producing a
// multiplier in [0, 1].
//
// It is driven by a Gate. The rising edge of the gate starts the attack
// from whatever level the envelope is at, so a note retriggered during its
// release does not click. Attack and decay run on their own; sustain holds
// until the falling edge, which starts the release. Once the release runs
// out the envelope is done.
type Envelope struct {
	sys SystemConfig

	// stage lengths in samples
	attack  uint64
	decay   uint64
	sustain float32
	release uint64

	gate     *Gate
	prevGate float32

	level   float32
	slope   float32
	counter uint64
	stage   Stage
}

func NewEnvelope(sys SystemConfig, adsr ADSR, gate *Gate) *Envelope {
	e := &Envelope{
		sys:      sys,
		gate:     gate,
		prevGate: gate.Read(),
		stage:    StageDone,
	}
	e.SetADSR(adsr)
	return e
}

func (e *Envelope) SetAttack(seconds float32) {
	e.attack = e.sys.Samples(seconds)
}

func (e *Envelope) SetDecay(seconds float32) {
	e.decay = e.sys.Samples(seconds)
}

func (e *Envelope) SetSustain(level float32) {
	e.sustain = level
}

func (e *Envelope) SetRelease(seconds float32) {
	e.release = e.sys.Samples(seconds)
}

// SetADSR replaces all settings. Changes take effect at the next stage
// transition.
func (e *Envelope) SetADSR(adsr ADSR) {
	e.SetAttack(adsr.Attack)
	e.SetDecay(adsr.Decay)
	e.SetSustain(adsr.Sustain)
	e.SetRelease(adsr.Release)
}

func (e *Envelope) Stage() Stage {
	return e.stage
}

func (e *Envelope) Level() float32 {
	return e.level
}

// ramp enters stage, heading for target over the given number of samples.
// A zero length stage reaches its target immediately.
func (e *Envelope) ramp(stage Stage, samples uint64, target float32) {
	e.stage = stage
	e.counter = samples
	if samples == 0 {
		e.level = target
		e.slope = 0
		return
	}
	e.slope = (target - e.level) / float32(samples)
}

func (e *Envelope) checkStage() {
	g := e.gate.Read()
	switch {
	case g <= 0 && e.prevGate > 0:
		e.prevGate = g
		e.ramp(StageRelease, e.release, 0)
	case g > 0 && e.prevGate <= 0:
		e.prevGate = g
		e.ramp(StageAttack, e.attack, 1)
	case e.counter == 0:
		switch e.stage {
		case StageAttack:
			e.stage = StageDecay
			e.counter = e.decay
			if e.decay == 0 {
				e.level = e.sustain
				e.slope = 0
			} else {
				e.slope = (e.sustain - 1) / float32(e.decay)
			}
		case StageDecay:
			e.stage = StageSustain
			e.slope = 0
		case StageRelease:
			e.stage = StageDone
			e.slope = 0
		}
	}
}

// step advances the envelope by up to n samples and returns the new level.
// The level never moves further than the current stage has left to run.
func (e *Envelope) step(n uint64) float32 {
	if e.stage != StageDone && e.stage != StageSustain {
		e.counter -= min(e.counter, n)
	}
	e.checkStage()
	e.level += e.slope * float32(min(e.counter, n))
	return e.level
}

// PerformAudio advances the envelope one sample at a time, multiplying each
// value of buf by the envelope level.
func (e *Envelope) PerformAudio(buf []float32) {
	for i := range buf {
		buf[i] *= e.step(1)
	}
}

// PerformControl advances the envelope by one control block and returns
// the level to apply across the whole block. Stage transitions are only as
// precise as the block length.
func (e *Envelope) PerformControl() float32 {
	return e.step(uint64(e.sys.ControlRateDivisor()))
}
