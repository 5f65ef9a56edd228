// Package wavfile reads wavetable sources from WAV files and writes
// rendered output back to them.
package wavfile

import (
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/whyrusleeping/wavesynth"
)

// Load reads every frame of a WAV file, mixing all channels down to one by
// averaging them.
func Load(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("can't open %s: %w", path, err)
	}
	defer f.Close()

	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer s.Close()

	out := make([]float32, 0, s.Len())
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, float32((frame[0]+frame[1])/2))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, int(format.SampleRate), nil
}

// TableLength is the largest power of two no greater than frames, capped
// at wavesynth.MaxTableSize.
func TableLength(frames int) int {
	if frames <= 0 {
		return 0
	}
	size := 1
	for size*2 <= frames && size*2 <= wavesynth.MaxTableSize {
		size *= 2
	}
	return size
}

// LoadTable reads a WAV file and truncates it to a valid table length.
func LoadTable(path string) ([]float32, int, error) {
	samples, sr, err := Load(path)
	if err != nil {
		return nil, 0, err
	}
	n := TableLength(len(samples))
	if n == 0 {
		return nil, 0, fmt.Errorf("%s has no samples", path)
	}
	return samples[:n], sr, nil
}

type sliceStreamer struct {
	data []float32
	pos  int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	n := copy32(samples, s.data[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error {
	return nil
}

func copy32(dst [][2]float64, src []float32) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i][0] = float64(src[i])
		dst[i][1] = float64(src[i])
	}
	return n
}

// Encode writes mono samples as a 16-bit WAV stream.
func Encode(w io.WriteSeeker, samples []float32, sampleRate int) error {
	return wav.Encode(w, &sliceStreamer{data: samples}, beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	})
}

// Write creates path and encodes samples into it.
func Write(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create %s: %w", path, err)
	}
	if err := Encode(f, samples, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
