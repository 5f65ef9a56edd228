package wavesynth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBridgeOrder(t *testing.T) {
	b := NewBridge[int](8)
	for i := 0; i < 5; i++ {
		if !b.TryPush(i) {
			t.Fatalf("push %d failed", i)
		}
	}

	var got []int
	if n := b.Drain(func(v int) { got = append(got, v) }); n != 5 {
		t.Fatalf("expected 5 drained, got %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d: got %d", i, v)
		}
	}
}

func TestBridgeDrainEmpty(t *testing.T) {
	b := NewBridge[int](4)
	called := false
	if n := b.Drain(func(int) { called = true }); n != 0 || called {
		t.Fatal("draining an empty bridge should do nothing")
	}
}

func TestBridgeCapacity(t *testing.T) {
	b := NewBridge[int](5)
	if b.Cap() != 8 {
		t.Fatalf("expected capacity rounded up to 8, got %d", b.Cap())
	}
	for i := 0; i < 8; i++ {
		if !b.TryPush(i) {
			t.Fatalf("push %d failed", i)
		}
	}
	if b.TryPush(8) {
		t.Fatal("push into a full bridge should fail")
	}
	if b.Len() != 8 {
		t.Fatalf("expected 8 queued, got %d", b.Len())
	}

	b.Drain(func(int) {})
	if !b.TryPush(8) {
		t.Fatal("push after drain should succeed")
	}
}

func TestBridgePushWaitsForRoom(t *testing.T) {
	b := NewBridge[int](2)
	b.TryPush(0)
	b.TryPush(1)

	done := make(chan error)
	go func() {
		done <- b.Push(context.Background(), 2)
	}()

	select {
	case <-done:
		t.Fatal("push should wait while the bridge is full")
	case <-time.After(10 * time.Millisecond):
	}

	var got []int
	b.Drain(func(v int) { got = append(got, v) })
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	b.Drain(func(v int) { got = append(got, v) })
	if len(got) != 3 || got[2] != 2 {
		t.Fatalf("expected the waiting value last, got %v", got)
	}
}

func TestBridgePushCancelled(t *testing.T) {
	b := NewBridge[int](1)
	b.TryPush(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := b.Push(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBridgeConcurrentOrder(t *testing.T) {
	const total = 100000
	b := NewBridge[int](16)

	go func() {
		for i := 0; i < total; i++ {
			if err := b.Push(context.Background(), i); err != nil {
				panic(err)
			}
		}
	}()

	next := 0
	deadline := time.Now().Add(10 * time.Second)
	for next < total {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %d values", next)
		}
		b.Drain(func(v int) {
			if v != next {
				t.Fatalf("expected %d, got %d", next, v)
			}
			next++
		})
	}
}
