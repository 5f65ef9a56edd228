package wavesynth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	lk   sync.Mutex
	msgs []Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSender) messages() []Message {
	s.lk.Lock()
	defer s.lk.Unlock()
	return append([]Message(nil), s.msgs...)
}

func TestStepDuration(t *testing.T) {
	if d := StepDuration(120, 4); d != 500*time.Millisecond {
		t.Fatalf("quarter notes at 120bpm should be 500ms, got %s", d)
	}
	if d := StepDuration(120, 16); d != 125*time.Millisecond {
		t.Fatalf("sixteenths at 120bpm should be 125ms, got %s", d)
	}
}

func TestArpRun(t *testing.T) {
	s := &recordingSender{}
	a := &Arp{
		Notes:    []uint8{60, 0, 64},
		Velocity: 100,
		Channel:  2,
		Duration: time.Millisecond,
		Target:   s,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatal(err)
	}

	msgs := s.messages()
	if len(msgs) < 4 {
		t.Fatalf("expected several steps, got %v", msgs)
	}

	var ons []uint8
	var playing uint8
	for i, m := range msgs {
		if m.Channel != 2 {
			t.Fatalf("message %d on wrong channel: %s", i, m)
		}
		switch m.Kind {
		case KindNoteOn:
			if playing != 0 {
				t.Fatalf("message %d: note %d started while %d was sounding", i, m.Note(), playing)
			}
			if m.Velocity() != 100 {
				t.Fatalf("message %d: wrong velocity %d", i, m.Velocity())
			}
			playing = m.Note()
			ons = append(ons, playing)
		case KindNoteOff:
			if m.Note() != playing {
				t.Fatalf("message %d: released %d while %d was sounding", i, m.Note(), playing)
			}
			playing = 0
		default:
			t.Fatalf("unexpected message %s", m)
		}
	}
	if playing != 0 {
		t.Fatalf("note %d left sounding after Run returned", playing)
	}

	for i, n := range ons {
		expected := []uint8{60, 64}[i%2]
		if n != expected {
			t.Fatalf("note-on %d: got %d, expected %d", i, n, expected)
		}
	}
}

func TestArpStopsOnSendError(t *testing.T) {
	closed := errors.New("closed")
	s := &recordingSender{err: closed}
	a := &Arp{Notes: []uint8{60}, Duration: time.Millisecond, Target: s}

	done := make(chan error)
	go func() { done <- a.Run(context.Background()) }()
	select {
	case err := <-done:
		if !errors.Is(err, closed) {
			t.Fatalf("expected the send error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("arp should stop when its target fails")
	}
}

func TestArpNoNotes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &Arp{Duration: time.Millisecond, Target: &recordingSender{}}
	if err := a.Run(ctx); err != nil {
		t.Fatal(err)
	}
}
