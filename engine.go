package wavesynth

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the event capacity used when none is configured.
const DefaultQueueSize = 1024

// Engine connects event producers to the render callback. Send and
// SetEnvelope may be called from any number of goroutines; the audio backend
// calls Process (or Stream) from its own. At the start of every callback all
// queued events are applied to the instrument before any sample is made.
type Engine struct {
	sys  SystemConfig
	inst *Instrument

	// sendLk serializes producers onto the single-producer bridge. The
	// render side never takes it.
	sendLk sync.Mutex
	events *Bridge[Message]

	pendingEnv atomic.Pointer[ADSR]

	apply func(Message)

	// mono holds the last block rendered for Stream; monoPos is the first
	// sample not yet handed out
	mono    []float32
	monoPos int

	filter     *HighPass
	compressor *Compressor
	recorder   *Recorder
}

func NewEngine(sys SystemConfig, inst *Instrument, queueSize int) *Engine {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	size := sys.BufferSize()
	if size <= 0 {
		size = 1
	}
	return &Engine{
		sys:     sys,
		inst:    inst,
		events:  NewBridge[Message](queueSize),
		apply:   inst.ApplyEvent,
		mono:    make([]float32, size),
		monoPos: size,
	}
}

// SetFilter installs a high-pass filter ahead of the compressor. It must be
// called before the engine is handed to an audio backend.
func (e *Engine) SetFilter(f *HighPass) {
	e.filter = f
}

// SetCompressor installs an output stage. It must be called before the
// engine is handed to an audio backend.
func (e *Engine) SetCompressor(c *Compressor) {
	e.compressor = c
}

// SetRecorder installs a recorder fed with every rendered sample. It must
// be called before the engine is handed to an audio backend.
func (e *Engine) SetRecorder(r *Recorder) {
	e.recorder = r
}

func (e *Engine) System() SystemConfig {
	return e.sys
}

// Send queues a message for the render goroutine. Messages from one
// goroutine are applied in the order they were sent. It waits while the
// queue is full and only fails when ctx is done.
func (e *Engine) Send(ctx context.Context, msg Message) error {
	e.sendLk.Lock()
	defer e.sendLk.Unlock()
	return e.events.Push(ctx, msg)
}

// SetEnvelope hands new envelope settings to the render goroutine. Only the
// latest settings given before a callback are applied.
func (e *Engine) SetEnvelope(adsr ADSR) {
	e.pendingEnv.Store(&adsr)
}

// Process is the render callback: it applies pending events and fills out
// with the instrument's output.
func (e *Engine) Process(out []float32) {
	e.events.Drain(e.apply)
	if adsr := e.pendingEnv.Swap(nil); adsr != nil {
		e.inst.SetEnvelope(*adsr)
	}

	e.inst.Render(out)

	if e.filter != nil {
		e.filter.Process(out)
	}
	if e.compressor != nil {
		e.compressor.Process(out)
	}
	if e.recorder != nil {
		e.recorder.Write(out)
	}
}

// Stream implements beep.Streamer, duplicating the mono output to both
// channels. Rendering always happens in whole buffer-size blocks so that
// every block advances the envelopes by exactly one control period; samples
// left over from a block are handed out on the next call.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	for done := 0; done < len(samples); {
		if e.monoPos == len(e.mono) {
			e.Process(e.mono)
			e.monoPos = 0
		}
		n := min(len(samples)-done, len(e.mono)-e.monoPos)
		for i, v := range e.mono[e.monoPos : e.monoPos+n] {
			samples[done+i][0] = float64(v)
			samples[done+i][1] = float64(v)
		}
		e.monoPos += n
		done += n
	}
	return len(samples), true
}

func (e *Engine) Err() error {
	return nil
}
