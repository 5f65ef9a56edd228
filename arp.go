package wavesynth

import (
	"context"
	"time"
)

// Sender accepts messages for the render goroutine. Engine implements it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Arp repeatedly plays Notes in order, one per step. A note number of zero
// is a rest.
type Arp struct {
	Notes    []uint8
	Velocity uint8
	Channel  uint8
	Duration time.Duration

	Target Sender
}

// StepDuration is the length of one step for a tempo in beats per minute
// where a bar of four beats is divided into div steps.
func StepDuration(bpm, div int) time.Duration {
	return (4 * time.Minute) / (time.Duration(bpm) * time.Duration(div))
}

// Run plays until ctx is done. The sounding note is released before Run
// returns. An error from Target ends the run and is returned.
func (a *Arp) Run(ctx context.Context) error {
	if len(a.Notes) == 0 {
		<-ctx.Done()
		return nil
	}

	tick := time.NewTicker(a.Duration)
	defer tick.Stop()

	var playing uint8
	stop := func(ctx context.Context) error {
		if playing == 0 {
			return nil
		}
		note := playing
		playing = 0
		return a.Target.Send(ctx, NoteOff(a.Channel, note, 0))
	}

	for i := 0; ; i++ {
		if err := stop(ctx); err != nil {
			return err
		}
		if note := a.Notes[i%len(a.Notes)]; note > 0 {
			if err := a.Target.Send(ctx, NoteOn(a.Channel, note, a.Velocity)); err != nil {
				return err
			}
			playing = note
		}

		select {
		case <-ctx.Done():
			return stop(context.Background())
		case <-tick.C:
		}
	}
}
