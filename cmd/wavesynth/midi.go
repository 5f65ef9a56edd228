package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/rakyll/portmidi"

	"github.com/whyrusleeping/wavesynth"
)

const midiBufSize = 1024

var errCancelled = errors.New("cancelled")

func inputDevices() []portmidi.DeviceID {
	var out []portmidi.DeviceID
	for i := 0; i < portmidi.CountDevices(); i++ {
		id := portmidi.DeviceID(i)
		if info := portmidi.Info(id); info != nil && info.IsInputAvailable {
			out = append(out, id)
		}
	}
	return out
}

func listDevices() error {
	if err := portmidi.Initialize(); err != nil {
		return err
	}
	defer portmidi.Terminate()

	devs := inputDevices()
	if len(devs) == 0 {
		fmt.Println("No input midi devices found.")
		return nil
	}
	for _, id := range devs {
		info := portmidi.Info(id)
		fmt.Printf("%d: %s (%s)\n", id, info.Name, info.Interface)
	}
	return nil
}

// selectDevice asks for one of the MIDI input devices, or "q" to cancel.
func selectDevice() (portmidi.DeviceID, error) {
	devs := inputDevices()
	if len(devs) == 0 {
		return 0, fmt.Errorf("no input midi devices found")
	}

	var suggestions []prompt.Suggest
	fmt.Println(`Select MIDI input device number from the following options (or "q" to cancel):`)
	for _, id := range devs {
		info := portmidi.Info(id)
		fmt.Printf("%d: %s\n", id, info.Name)
		suggestions = append(suggestions, prompt.Suggest{Text: strconv.Itoa(int(id)), Description: info.Name})
	}
	completer := func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
	}

	for {
		in := strings.TrimSpace(prompt.Input("device> ", completer))
		if in == "q" {
			fmt.Println("Never mind!")
			return 0, errCancelled
		}
		i, err := strconv.Atoi(in)
		if err != nil {
			fmt.Printf("%s is not a valid choice\n", in)
			continue
		}
		for _, id := range devs {
			if int(id) == i {
				fmt.Println("Using", portmidi.Info(id).Name)
				return id, nil
			}
		}
		fmt.Printf("%d is not a valid input device index\n", i)
	}
}

// playMidi reads a MIDI input device and forwards its messages to the
// engine until ctx is done.
func playMidi(ctx context.Context, engine *wavesynth.Engine, device int) error {
	if err := portmidi.Initialize(); err != nil {
		return fmt.Errorf("can't init portmidi: %w", err)
	}
	defer portmidi.Terminate()

	id := portmidi.DeviceID(device)
	if device < 0 {
		var err error
		id, err = selectDevice()
		if errors.Is(err, errCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	in, err := portmidi.NewInputStream(id, midiBufSize)
	if err != nil {
		return fmt.Errorf("can't open midi port: %w", err)
	}
	defer in.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ok, err := in.Poll()
		if err != nil {
			return fmt.Errorf("polling midi: %w", err)
		}
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}

		events, err := in.Read(midiBufSize)
		if err != nil {
			return fmt.Errorf("reading midi: %w", err)
		}
		for _, event := range events {
			msg := wavesynth.Decode(uint8(event.Status), uint8(event.Data1), uint8(event.Data2))
			switch msg.Kind {
			case wavesynth.KindNoteOn, wavesynth.KindNoteOff:
			default:
				b, err := json.Marshal(event)
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				continue
			}
			if err := engine.Send(ctx, msg); err != nil {
				return nil
			}
		}
	}
}
