package main

import (
	"context"
	"fmt"
	"strconv"
	"unicode"

	"github.com/c-bata/go-prompt"

	"github.com/whyrusleeping/wavesynth"
)

var commands = []prompt.Suggest{
	{Text: "on", Description: "on <note> [velocity]: start a note"},
	{Text: "off", Description: "off <note>: release a note"},
	{Text: "env", Description: "env <attack> <decay> <sustain> <release>: set the envelope"},
	{Text: "arp", Description: "arp <bpm> <div> <notes...>: run an arpeggio"},
	{Text: "stop", Description: "stop the arpeggio"},
	{Text: "exit", Description: "quit"},
}

// console turns typed commands into engine messages.
type console struct {
	engine *wavesynth.Engine

	arpCancel context.CancelFunc
}

func runConsole(ctx context.Context, engine *wavesynth.Engine) error {
	c := &console{engine: engine}
	defer c.stopArp()

	completer := func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
	}
	for ctx.Err() == nil {
		t := prompt.Input("> ", completer)
		if t == "exit" {
			return nil
		}
		if err := c.processCmd(ctx, t); err != nil {
			fmt.Println("ERROR: ", err)
		}
	}
	return nil
}

func (c *console) stopArp() {
	if c.arpCancel != nil {
		c.arpCancel()
		c.arpCancel = nil
	}
}

func (c *console) processCmd(ctx context.Context, cmdl string) error {
	tokens, err := tokenize(cmdl)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	args := tokens[1:]
	switch tokens[0] {
	case "on":
		if len(args) < 1 {
			return fmt.Errorf("on needs a note")
		}
		note, err := parseNote(args[0])
		if err != nil {
			return err
		}
		vel := uint8(100)
		if len(args) > 1 {
			if vel, err = parseNote(args[1]); err != nil {
				return err
			}
		}
		return c.engine.Send(ctx, wavesynth.NoteOn(0, note, vel))
	case "off":
		if len(args) < 1 {
			return fmt.Errorf("off needs a note")
		}
		note, err := parseNote(args[0])
		if err != nil {
			return err
		}
		return c.engine.Send(ctx, wavesynth.NoteOff(0, note, 0))
	case "env":
		if len(args) != 4 {
			return fmt.Errorf("env needs attack, decay, sustain and release")
		}
		var vals [4]float32
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 32)
			if err != nil {
				return fmt.Errorf("parsing arg %d: %w", i, err)
			}
			vals[i] = float32(v)
		}
		if vals[2] < 0 || vals[2] > 1 {
			return fmt.Errorf("sustain must be within [0, 1]")
		}
		c.engine.SetEnvelope(wavesynth.ADSR{Attack: vals[0], Decay: vals[1], Sustain: vals[2], Release: vals[3]})
		return nil
	case "arp":
		if len(args) < 3 {
			return fmt.Errorf("arp needs a bpm, a division and some notes")
		}
		bpm, err := strconv.Atoi(args[0])
		if err != nil || bpm <= 0 {
			return fmt.Errorf("invalid bpm %q", args[0])
		}
		div, err := strconv.Atoi(args[1])
		if err != nil || div <= 0 {
			return fmt.Errorf("invalid division %q", args[1])
		}
		var notes []uint8
		for _, a := range args[2:] {
			n, err := parseNote(a)
			if err != nil {
				return err
			}
			notes = append(notes, n)
		}
		c.stopArp()
		actx, cancel := context.WithCancel(ctx)
		c.arpCancel = cancel
		arp := &wavesynth.Arp{
			Notes:    notes,
			Velocity: 100,
			Duration: wavesynth.StepDuration(bpm, div),
			Target:   c.engine,
		}
		go arp.Run(actx)
		return nil
	case "stop":
		c.stopArp()
		return nil
	default:
		return fmt.Errorf("unknown command %q", tokens[0])
	}
}

func parseNote(s string) (uint8, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 127 {
		return 0, fmt.Errorf("%q is not a value between 0 and 127", s)
	}
	return uint8(n), nil
}

// tokenize splits a command line into words. Commas separate words like
// spaces do.
func tokenize(s string) ([]string, error) {
	var out []string
	var wordstart int
	inword := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch {
		case unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == '-':
			if !inword {
				inword = true
				wordstart = i
			}
		case unicode.IsSpace(runes[i]) || runes[i] == ',':
			if inword {
				out = append(out, string(runes[wordstart:i]))
				inword = false
			}
		default:
			return nil, fmt.Errorf("invalid character at index %d: %q", i, runes[i])
		}
	}
	if inword {
		out = append(out, string(runes[wordstart:]))
	}

	return out, nil
}
