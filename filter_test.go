package wavesynth

import "testing"

func TestHighPassRemovesDC(t *testing.T) {
	f := NewHighPass(48000, 30, 0.707)
	buf := make([]float32, 48000)
	fill(buf, 0.5)
	f.Process(buf)
	if v := buf[len(buf)-1]; v > 1e-3 || v < -1e-3 {
		t.Fatalf("constant input should settle to 0, got %v", v)
	}
}

func TestHighPassKeepsHighFrequencies(t *testing.T) {
	f := NewHighPass(48000, 30, 0.707)
	// 3kHz, well above the cutoff
	buf := sineBuffer(4800, 1, 16)
	f.Process(buf)
	if p := peak(buf[2400:]); p < 0.95 || p > 1.05 {
		t.Fatalf("expected the tone to pass unchanged, got peak %v", p)
	}
}
