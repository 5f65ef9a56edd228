package wavesynth

import "math"

// Phasor is an oscillator cursor over a shared Wavetable. The phase is a
// 32-bit fixed-point value in units of table index with 16 fractional bits;
// it wraps freely, since only its low bits ever reach the table.
type Phasor struct {
	table *Wavetable

	phase int32
	// converts a phase offset in radians to a phase increment
	radToInc float32
	// converts a frequency in Hz to a per-sample phase increment
	cpsToInc float32
}

func (wt *Wavetable) NewPhasor(sys SystemConfig) *Phasor {
	size := float64(wt.Len())
	return &Phasor{
		table:    wt,
		radToInc: float32(65536 * size / (2 * math.Pi)),
		cpsToInc: float32(size * sys.SampleDuration() * 65536),
	}
}

// Render fills out with a constant frequency and phase offset for the whole
// block. Negative frequencies play the table backwards.
func (p *Phasor) Render(out []float32, freq, phaseOffset float32) {
	inc := toFixed(p.cpsToInc * freq)
	offset := toFixed(p.radToInc * phaseOffset)
	for i := range out {
		out[i] = p.table.SampleAt(p.phase + offset)
		p.phase += inc
	}
}

// RenderModulated fills out using a per-sample frequency and phase offset.
// freq and phaseOffset must be at least as long as out.
func (p *Phasor) RenderModulated(out, freq, phaseOffset []float32) {
	freq = freq[:len(out)]
	phaseOffset = phaseOffset[:len(out)]
	for i := range out {
		out[i] = p.table.SampleAt(p.phase + toFixed(p.radToInc*phaseOffset[i]))
		p.phase += toFixed(p.cpsToInc * freq[i])
	}
}

// Zero resets the phase to the start of the table.
func (p *Phasor) Zero() {
	p.phase = 0
}

func (p *Phasor) Phase() int32 {
	return p.phase
}

// toFixed rounds to the nearest increment. Values beyond the int32 range
// wrap the same way the accumulator does.
func toFixed(v float32) int32 {
	return int32(int64(math.Round(float64(v))))
}
