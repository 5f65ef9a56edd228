package main

import (
	"context"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/whyrusleeping/wavesynth"
	"github.com/whyrusleeping/wavesynth/analysis"
)

const (
	screenWidth  = 1000
	screenHeight = 600
)

var keyNotes = map[sdl.Keycode]int{
	sdl.K_a: 60,
	sdl.K_w: 61,
	sdl.K_s: 62,
	sdl.K_e: 63,
	sdl.K_d: 64,
	sdl.K_f: 65,
	sdl.K_t: 66,
	sdl.K_g: 67,
	sdl.K_y: 68,
	sdl.K_h: 69,
	sdl.K_u: 70,
	sdl.K_j: 71,
	sdl.K_k: 72,
	sdl.K_l: 74,
}

// draw opens a window with the most recent output and its spectrum. The
// home row plays notes; z and x shift the octave.
func draw(ctx context.Context, engine *wavesynth.Engine, rec *wavesynth.Recorder) error {
	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		return fmt.Errorf("failed to initialize SDL: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("wavesynth", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, screenWidth, screenHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer renderer.Destroy()

	buf := make([]float32, 2048)
	dataPoints := make([]float64, len(buf))

	// notes currently held, by key, so key repeat and octave changes
	// release what was actually started
	held := make(map[sdl.Keycode]uint8)
	var octaveAdjust int

	for ctx.Err() == nil {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				key := event.Keysym.Sym
				if event.Type == sdl.KEYUP {
					if note, ok := held[key]; ok {
						delete(held, key)
						if err := engine.Send(ctx, wavesynth.NoteOff(0, note, 0)); err != nil {
							return nil
						}
						continue
					}
					switch key {
					case sdl.K_z:
						octaveAdjust -= 12
					case sdl.K_x:
						octaveAdjust += 12
					}
					continue
				}

				if _, ok := held[key]; ok || event.Repeat != 0 {
					continue
				}
				base, ok := keyNotes[key]
				if !ok {
					continue
				}
				note := base + octaveAdjust
				if note < 0 || note > 127 {
					continue
				}
				held[key] = uint8(note)
				if err := engine.Send(ctx, wavesynth.NoteOn(0, uint8(note), 100)); err != nil {
					return nil
				}
			}
		}

		n := rec.Snapshot(buf)
		for i, v := range buf[:n] {
			dataPoints[i] = float64(v)
		}
		spectrum := analysis.Spectrum(dataPoints[:n])

		renderer.SetDrawColor(255, 255, 255, 255)
		renderer.Clear()

		graphData(renderer, dataPoints[:min(n, 500)], 50, 50, 900, 200, -1, 1)
		graphData(renderer, spectrum[:min(len(spectrum), 200)], 50, 330, 900, 200, 0, 0.5)

		renderer.Present()
		sdl.Delay(16)
	}
	return nil
}

func graphData(renderer *sdl.Renderer, dataPoints []float64, x, y, width, height int32, minval, maxval float64) {
	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.DrawLine(x, y+height/2, x+width, y+height/2)
	renderer.DrawLine(x, y, x, y+height)

	if len(dataPoints) < 2 {
		return
	}

	spread := maxval - minval
	scaleY := func(v float64) int32 {
		return y + height - int32((v-minval)*float64(height)/spread)
	}

	renderer.SetDrawColor(255, 0, 0, 255)
	for i := 0; i < len(dataPoints)-1; i++ {
		x1 := x + int32(float64(i)*float64(width)/float64(len(dataPoints)-1))
		x2 := x + int32(float64(i+1)*float64(width)/float64(len(dataPoints)-1))
		renderer.DrawLine(x1, scaleY(dataPoints[i]), x2, scaleY(dataPoints[i+1]))
	}
}
