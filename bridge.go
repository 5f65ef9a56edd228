package wavesynth

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"
)

// Bridge is a single-producer, single-consumer ring that carries values from
// an event goroutine to the render goroutine. Draining never blocks and
// never allocates. The producer waits for room instead of dropping values.
//
// Only one goroutine may push at a time; callers with several producers
// must serialize them.
type Bridge[T any] struct {
	data []T
	mask uint64

	// padding keeps the producer and consumer indexes on separate cache lines
	_    [8]uint64
	head atomic.Uint64 // written by the producer
	_    [8]uint64
	tail atomic.Uint64 // written by the consumer
	_    [8]uint64
}

// NewBridge creates a Bridge holding at least minSize values. The capacity
// is rounded up to the next power of two.
func NewBridge[T any](minSize int) *Bridge[T] {
	if minSize <= 0 {
		panic("bridge minimum size must be positive")
	}
	size := 1
	for size < minSize {
		size <<= 1
		if size <= 0 {
			panic("requested bridge size too large, caused overflow")
		}
	}
	return &Bridge[T]{
		data: make([]T, size),
		mask: uint64(size - 1),
	}
}

func (b *Bridge[T]) Cap() int {
	return len(b.data)
}

// Len is the number of queued values. It is only a snapshot when called
// while the other side is running.
func (b *Bridge[T]) Len() int {
	return int(b.head.Load() - b.tail.Load())
}

// TryPush queues v, returning false if the ring is full.
func (b *Bridge[T]) TryPush(v T) bool {
	head := b.head.Load()
	if head-b.tail.Load() == uint64(len(b.data)) {
		return false
	}
	b.data[head&b.mask] = v
	b.head.Store(head + 1)
	return true
}

// Push queues v, waiting for the consumer to make room if the ring is full.
// It only fails if ctx is done first.
func (b *Bridge[T]) Push(ctx context.Context, v T) error {
	for spins := 0; !b.TryPush(v); spins++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if spins < 64 {
			runtime.Gosched()
		} else {
			time.Sleep(50 * time.Microsecond)
		}
	}
	return nil
}

// Drain passes every value queued at the time of the call to fn, in the
// order they were pushed, and returns how many there were.
func (b *Bridge[T]) Drain(fn func(T)) int {
	tail := b.tail.Load()
	head := b.head.Load()
	var zero T
	for i := tail; i != head; i++ {
		v := b.data[i&b.mask]
		b.data[i&b.mask] = zero
		fn(v)
	}
	b.tail.Store(head)
	return int(head - tail)
}
