// Package analysis extracts wavetables from recorded samples using the
// spectrum of the recording.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/maddyblue/go-dsp/fft"
)

// lowest fundamental worth considering, in Hz
const minFundamental = 20.0

var ErrNoFundamental = errors.New("no fundamental found")

// Peak is a local maximum of the magnitude spectrum. Freq is in cycles per
// sample, i.e. a fraction of the sample rate.
type Peak struct {
	Freq      float64
	Magnitude float64
}

// Spectrum returns the magnitude of the first half of the spectrum of buf,
// normalized by its length.
func Spectrum(buf []float64) []float64 {
	if len(buf) == 0 {
		return nil
	}
	coefs := fft.FFTReal(buf)
	out := make([]float64, len(coefs)/2+1)
	for i, c := range coefs[:len(out)] {
		out[i] = cmplx.Abs(c) / float64(len(buf))
	}
	return out
}

// Harmonics finds the peaks of the spectrum of buf, loudest first.
func Harmonics(buf []float32) []Peak {
	in := make([]float64, len(buf))
	for i, v := range buf {
		in[i] = float64(v)
	}
	coefs := fft.FFTReal(in)

	var peaks []Peak
	var lastMag float64
	var rising bool
	for i, c := range coefs[:len(coefs)/2] {
		mag := cmplx.Abs(c)
		if mag > lastMag {
			rising = true
		} else if rising {
			rising = false
			peaks = append(peaks, Peak{
				Freq:      float64(i-1) / float64(len(buf)),
				Magnitude: lastMag,
			})
		}
		lastMag = mag
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Magnitude > peaks[j].Magnitude
	})
	return peaks
}

// Fundamental returns the frequency in Hz of the loudest peak at or above
// 20Hz, or 0 if there is none.
func Fundamental(buf []float32, sampleRate float64) float64 {
	minHarm := minFundamental / sampleRate
	for _, p := range Harmonics(buf) {
		if p.Freq >= minHarm {
			return p.Freq * sampleRate
		}
	}
	return 0
}

// ExtractCycle cuts one period of the fundamental out of buf, starting at
// its first rising zero crossing, and resamples it to size points with
// linear interpolation. size must be a power of two.
func ExtractCycle(buf []float32, sampleRate float64, size int) ([]float32, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("cycle size must be a power of two: got %d", size)
	}
	f0 := Fundamental(buf, sampleRate)
	if f0 <= 0 {
		return nil, ErrNoFundamental
	}
	period := sampleRate / f0

	start := 0
	for i := 1; i < len(buf); i++ {
		if buf[i-1] < 0 && buf[i] >= 0 {
			start = i
			break
		}
	}
	if float64(start)+period+1 >= float64(len(buf)) {
		return nil, fmt.Errorf("recording too short for a %.2fHz cycle", f0)
	}

	out := make([]float32, size)
	for i := range out {
		pos := float64(start) + period*float64(i)/float64(size)
		n := int(math.Floor(pos))
		m := float32(pos - float64(n))
		out[i] = buf[n] + m*(buf[n+1]-buf[n])
	}
	return out, nil
}
