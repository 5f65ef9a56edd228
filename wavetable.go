package wavesynth

import (
	"errors"
	"fmt"
	"math"
)

const (
	// number of fractional bits in the fixed-point phase
	phaseFracBits = 16

	// MaxTableSize is the largest table the fixed-point phase can address
	// with full interpolation precision.
	MaxTableSize = 1 << 17
)

var (
	ErrTableNotPowerOfTwo = errors.New("wavetable size must be a power of two")
	ErrTableTooLarge      = errors.New("phase computation is not precise for wavetables longer than 2^17")
)

// Wavetable is an immutable single-cycle waveform prepared for linear
// interpolation. It holds no phase; any number of Phasors can read it.
//
// Instead of the raw values x[n], two derived tables are stored:
//
//	table1[n] = 2*x[n] - x[n+1]
//	table2[n] = x[n+1] - x[n]
//
// so that table1[n] + (1+m)*table2[n] == x[n] + m*(x[n+1]-x[n]). The 1+m
// factor comes straight out of the phase bits (see fractionalPart), which
// saves a subtraction and a load per sample.
type Wavetable struct {
	table1 []float32
	table2 []float32
	mask   int32
}

// NewWavetable builds a table from one cycle of samples. The length must be
// a power of two no larger than MaxTableSize.
func NewWavetable(samples []float32) (*Wavetable, error) {
	size := len(samples)
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrTableNotPowerOfTwo, size)
	}
	if size > MaxTableSize {
		return nil, fmt.Errorf("%w: got %d", ErrTableTooLarge, size)
	}

	wt := &Wavetable{
		table1: make([]float32, size),
		table2: make([]float32, size),
		mask:   int32(size - 1),
	}
	for i := range samples {
		v1 := samples[i]
		v2 := samples[(i+1)&(size-1)]
		wt.table1[i] = 2*v1 - v2
		wt.table2[i] = v2 - v1
	}
	return wt, nil
}

// MustWavetable is like NewWavetable but panics on a bad table size.
func MustWavetable(samples []float32) *Wavetable {
	wt, err := NewWavetable(samples)
	if err != nil {
		panic(err)
	}
	return wt
}

func (wt *Wavetable) Len() int {
	return len(wt.table1)
}

// SampleAt interpolates the table at a fixed-point phase with 16 fractional
// bits. The integral part wraps modulo the table length.
func (wt *Wavetable) SampleAt(phase int32) float32 {
	idx := (phase >> phaseFracBits) & wt.mask
	return wt.table1[idx] + fractionalPart(phase)*wt.table2[idx]
}

// fractionalPart returns 1+m where m is the fractional part of the
// fixed-point phase. The 16 fractional bits are placed at the top of an
// IEEE-754 mantissa with a zero (biased 127) exponent and a positive sign.
func fractionalPart(phase int32) float32 {
	return math.Float32frombits(0x3F800000 | (0x007FFF80 & (uint32(phase) << 7)))
}

// fractionalPartPortable computes the same value as fractionalPart with
// plain arithmetic.
func fractionalPartPortable(phase int32) float32 {
	return 1 + float32(phase&0xFFFF)/65536
}
