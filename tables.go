package wavesynth

import (
	"fmt"
	"math"
)

// OscFunc maps a phase in cycles, [0, 1), to a sample value.
type OscFunc func(float64) float64

func sineOsc(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func sawOsc(phase float64) float64 {
	return 2*phase - 1
}

// softSquareOsc is an overdriven sine, clipped to [-1, 1], which has fewer
// harsh harmonics than a true square.
func softSquareOsc(phase float64) float64 {
	return math.Max(-1, math.Min(1, 5*math.Sin(2*math.Pi*phase)))
}

func triangleOsc(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

var shapes = map[string]OscFunc{
	"sine":     sineOsc,
	"saw":      sawOsc,
	"square":   softSquareOsc,
	"triangle": triangleOsc,
}

// GenerateTable samples one cycle of osc into size points.
func GenerateTable(osc OscFunc, size int) []float32 {
	out := make([]float32, size)
	for i := range out {
		out[i] = float32(osc(float64(i) / float64(size)))
	}
	return out
}

// GenerateShape samples one of the named shapes: sine, saw, square or
// triangle.
func GenerateShape(name string, size int) ([]float32, error) {
	osc, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown table shape: %q", name)
	}
	return GenerateTable(osc, size), nil
}

// GenerateRamp returns 0, 1, ..., size-1.
func GenerateRamp(size int) []float32 {
	out := make([]float32, size)
	for i := range out {
		out[i] = float32(i)
	}
	return out
}
