package wavesynth

import "math"

// HighPass is a biquad high-pass filter used to keep sub-audio rumble and
// dc offset out of the summed voices.
type HighPass struct {
	a1, a2     float64
	b0, b1, b2 float64
	x1, x2     float64
	y1, y2     float64
}

// NewHighPass creates a filter passing frequencies above cutoff Hz. q sets
// the resonance at the cutoff; 0.707 gives a flat passband.
func NewHighPass(sampleRate, cutoff, q float64) *HighPass {
	w0 := 2 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + math.Cos(w0)) / 2
	b1 := -(1 + math.Cos(w0))
	b2 := (1 + math.Cos(w0)) / 2
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha

	return &HighPass{
		a1: a1 / a0,
		a2: a2 / a0,
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
	}
}

// Process filters buf in place.
func (f *HighPass) Process(buf []float32) {
	for i := range buf {
		x0 := float64(buf[i])
		y0 := f.b0*x0 + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

		f.x2, f.x1 = f.x1, x0
		f.y2, f.y1 = f.y1, y0

		buf[i] = float32(y0)
	}
}
