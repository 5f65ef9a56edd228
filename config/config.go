// Package config reads the synthesizer's JSON configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/whyrusleeping/wavesynth"
)

const defaultConfig = `
{
	"sampleRate": 48000,
	"controlRateDivisor": 128,
	"bufferSize": 128,
	"voices": 16,
	"queueSize": 1024,
	"backend": "speaker",
	"watchConfig": true,
	"envelope": {
		"attackSeconds": 0.01,
		"decaySeconds": 0.2,
		"sustainLevel": 0.6,
		"releaseSeconds": 0.5
	},
	"table": {
		"shape": "saw",
		"size": 2048
	},
	"highPass": {
		"enabled": true,
		"cutoff": 20,
		"q": 0.707
	},
	"compressor": {
		"enabled": true,
		"threshold": 0.8,
		"ratio": 0.5,
		"attack": 0.01,
		"release": 0.0005
	}
}
`

type EnvelopeConfig struct {
	AttackSeconds  float32 `json:"attackSeconds"`
	DecaySeconds   float32 `json:"decaySeconds"`
	SustainLevel   float32 `json:"sustainLevel"`
	ReleaseSeconds float32 `json:"releaseSeconds"`
}

func (c EnvelopeConfig) ADSR() wavesynth.ADSR {
	return wavesynth.ADSR{
		Attack:  c.AttackSeconds,
		Decay:   c.DecaySeconds,
		Sustain: c.SustainLevel,
		Release: c.ReleaseSeconds,
	}
}

// TableConfig selects the wavetable. Path, if set, names a WAV file and
// takes precedence over Shape. With Extract the table is a single cycle cut
// out of the file rather than its first samples.
type TableConfig struct {
	Shape   string `json:"shape"`
	Size    int    `json:"size"`
	Path    string `json:"path,omitempty"`
	Extract bool   `json:"extract,omitempty"`
}

type HighPassConfig struct {
	Enabled bool    `json:"enabled"`
	Cutoff  float64 `json:"cutoff"`
	Q       float64 `json:"q"`
}

type CompressorConfig struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
	Ratio     float64 `json:"ratio"`
	Attack    float64 `json:"attack"`
	Release   float64 `json:"release"`
}

type Config struct {
	SampleRate         float64          `json:"sampleRate"`
	ControlRateDivisor uint64           `json:"controlRateDivisor"`
	BufferSize         int              `json:"bufferSize"`
	Voices             int              `json:"voices"`
	QueueSize          int              `json:"queueSize"`
	Backend            string           `json:"backend"`
	WatchConfig        bool             `json:"watchConfig"`
	Envelope           EnvelopeConfig   `json:"envelope"`
	Table              TableConfig      `json:"table"`
	HighPass           HighPassConfig   `json:"highPass"`
	Compressor         CompressorConfig `json:"compressor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	if err := json.Unmarshal([]byte(defaultConfig), &c); err != nil {
		panic(err)
	}
	return &c
}

func (c *Config) System() wavesynth.SystemConfig {
	return wavesynth.NewSystemConfig(c.SampleRate, c.ControlRateDivisor, c.BufferSize)
}

func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sampleRate must be positive, was: %v", c.SampleRate)
	case c.ControlRateDivisor == 0:
		return fmt.Errorf("controlRateDivisor must be positive")
	case c.BufferSize <= 0:
		return fmt.Errorf("bufferSize must be positive, was: %d", c.BufferSize)
	case c.Voices <= 0:
		return fmt.Errorf("voices must be positive, was: %d", c.Voices)
	case c.Envelope.SustainLevel < 0 || c.Envelope.SustainLevel > 1:
		return fmt.Errorf("sustainLevel must be within [0, 1], was: %v", c.Envelope.SustainLevel)
	case c.HighPass.Enabled && (c.HighPass.Cutoff <= 0 || c.HighPass.Cutoff >= c.SampleRate/2 || c.HighPass.Q <= 0):
		return fmt.Errorf("highPass needs a cutoff below nyquist and a positive q")
	case c.Envelope.AttackSeconds < 0 || c.Envelope.DecaySeconds < 0 || c.Envelope.ReleaseSeconds < 0:
		return fmt.Errorf("envelope times can't be negative")
	}
	switch c.Backend {
	case "speaker", "portaudio":
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	return nil
}

// ReadConfig reads the configuration at p, writing the defaults there
// first if the file doesn't exist.
func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	return load(p)
}

func load(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", p, err)
	}
	return c, nil
}
