package wavesynth

import "math"

// Compressor is an optional output stage. Voices are summed, so a chord can
// go well past full scale; the compressor pulls peaks above threshold back
// down by ratio, following the signal with separate attack and release
// smoothing factors.
type Compressor struct {
	threshold float64
	ratio     float64
	attack    float64
	release   float64
	envelope  float64

	rollingAv  float64
	avInterval float64
}

// NewCompressor creates a Compressor. attack and release are smoothing
// factors in (0, 1]; larger values follow the signal faster.
func NewCompressor(threshold, ratio, attack, release float64) *Compressor {
	return &Compressor{
		threshold:  threshold,
		ratio:      ratio,
		attack:     attack,
		release:    release,
		avInterval: 500,
	}
}

func (c *Compressor) compressValue(v float64) float64 {
	// remove any slow dc drift before measuring the level
	c.rollingAv = ((c.rollingAv * (c.avInterval - 1)) + v) / c.avInterval
	v -= c.rollingAv

	a := math.Abs(v)
	if a > c.threshold {
		c.envelope += (a - c.envelope) * c.attack
	} else {
		c.envelope += (a - c.envelope) * c.release
	}

	return v * c.gain(c.envelope)
}

// gain is the multiplier applied at a followed signal level. Above the
// threshold the output level is threshold * (level/threshold)^(1-ratio), so
// a ratio of 0 leaves the signal alone and 1 holds it at the threshold.
func (c *Compressor) gain(level float64) float64 {
	if level <= c.threshold {
		return 1
	}
	return math.Pow(c.threshold/level, c.ratio)
}

// Process compresses buf in place.
func (c *Compressor) Process(buf []float32) {
	for i := range buf {
		buf[i] = float32(c.compressValue(float64(buf[i])))
	}
}
