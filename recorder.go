package wavesynth

import "sync"

// Recorder keeps the most recent output samples so that a display can take
// snapshots of them. Writes come from the render goroutine and are skipped,
// never waited on, while a snapshot is being taken.
type Recorder struct {
	lk       sync.Mutex
	buf      []float32
	position int
}

func NewRecorder(size int) *Recorder {
	if size <= 0 {
		panic("recorder size must be positive")
	}
	return &Recorder{
		buf: make([]float32, size),
	}
}

// Write appends samples to the ring. It reports false if the samples were
// dropped because a reader held the lock.
func (r *Recorder) Write(samples []float32) bool {
	if !r.lk.TryLock() {
		return false
	}
	defer r.lk.Unlock()

	for _, v := range samples {
		r.buf[r.position%len(r.buf)] = v
		r.position++
	}
	return true
}

// Snapshot copies the oldest-to-newest contents of the ring into buf and
// returns the number of samples copied.
func (r *Recorder) Snapshot(buf []float32) int {
	r.lk.Lock()
	defer r.lk.Unlock()

	lim := min(len(buf), len(r.buf))
	start := r.position + len(r.buf) - lim
	for i := 0; i < lim; i++ {
		buf[i] = r.buf[(start+i)%len(r.buf)]
	}
	return lim
}
