package wavesynth

// SystemConfig holds the timing constants shared by every component. It is
// a value type; copies are cheap and never change after creation.
type SystemConfig struct {
	sampleRate         float64
	controlRateDivisor float64
	bufferSize         int
}

// NewSystemConfig creates a SystemConfig.
//
// controlRateDivisor is the number of samples per control block, i.e. the
// sample rate divided by the control rate. At 48kHz with a 375Hz control
// rate it would be 128. It is conventionally equal to bufferSize.
//
// bufferSize is the number of frames processed on each render callback.
func NewSystemConfig(sampleRate float64, controlRateDivisor uint64, bufferSize int) SystemConfig {
	return SystemConfig{
		sampleRate:         sampleRate,
		controlRateDivisor: float64(controlRateDivisor),
		bufferSize:         bufferSize,
	}
}

func (s SystemConfig) SampleRate() float64 {
	return s.sampleRate
}

// SampleDuration is the sampling period in seconds.
func (s SystemConfig) SampleDuration() float64 {
	return 1 / s.sampleRate
}

func (s SystemConfig) ControlRateDivisor() float64 {
	return s.controlRateDivisor
}

func (s SystemConfig) BufferSize() int {
	return s.bufferSize
}

// Samples converts a duration in seconds to a whole number of samples.
func (s SystemConfig) Samples(seconds float32) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(float64(seconds) * s.sampleRate)
}
