package wavesynth

import "sync"

// Gate is the trigger level of a note. A value above zero means the note is
// held (the value is its level), zero or below means it has been released.
//
// The gate is the only state a Voice shares with whoever issues its note
// events; the envelope reacts to its edges, not to its content.
type Gate struct {
	lk  sync.Mutex
	val float32
}

func NewGate(val float32) *Gate {
	return &Gate{val: val}
}

func (g *Gate) Read() float32 {
	g.lk.Lock()
	defer g.lk.Unlock()
	return g.val
}

func (g *Gate) Write(val float32) {
	g.lk.Lock()
	defer g.lk.Unlock()
	g.val = val
}

func (g *Gate) Open() {
	g.Write(1)
}

func (g *Gate) Close() {
	g.Write(0)
}

func (g *Gate) IsOpen() bool {
	return g.Read() > 0
}
