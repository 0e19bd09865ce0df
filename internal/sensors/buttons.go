// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Buttons reads two active-low momentary buttons wired to ground with the
// internal pull-ups enabled.
type Buttons struct {
	record gpio.PinIn
	verify gpio.PinIn
}

// NewButtons configures the record and verify pins as pulled-up inputs.
func NewButtons(recordPin, verifyPin string) (*Buttons, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("buttons: periph host init: %w", err)
	}

	pins := make([]gpio.PinIO, 0, 2)
	for _, name := range []string{recordPin, verifyPin} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("buttons: pin %q not found", name)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("buttons: configure %s: %w", name, err)
		}
		pins = append(pins, p)
	}
	log.Printf("buttons: record=%s verify=%s (active low)", recordPin, verifyPin)
	return &Buttons{record: pins[0], verify: pins[1]}, nil
}

// Read reports which buttons are held down.
func (b *Buttons) Read() (record, verify bool, err error) {
	return b.record.Read() == gpio.Low, b.verify.Read() == gpio.Low, nil
}

// LineInput turns text commands into single-tick button presses so the lock
// can be driven from a terminal: "r" records, "v" verifies, "x" presses both.
type LineInput struct {
	mu      sync.Mutex
	pending []string
	err     error
}

// NewLineInput starts reading commands from r in the background.
func NewLineInput(r io.Reader) *LineInput {
	in := &LineInput{}
	go in.scan(r)
	return in
}

func (in *LineInput) scan(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		cmd := strings.ToLower(strings.TrimSpace(sc.Text()))
		if cmd == "" {
			continue
		}
		in.mu.Lock()
		in.pending = append(in.pending, cmd)
		in.mu.Unlock()
	}
	in.mu.Lock()
	in.err = sc.Err()
	in.mu.Unlock()
}

// Read consumes at most one pending command.
func (in *LineInput) Read() (record, verify bool, err error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.pending) == 0 {
		return false, false, in.err
	}
	cmd := in.pending[0]
	in.pending = in.pending[1:]

	switch cmd {
	case "r", "record":
		return true, false, nil
	case "v", "verify":
		return false, true, nil
	case "x", "reset":
		return true, true, nil
	default:
		log.Printf("input: unknown command %q (use r, v or x)", cmd)
		return false, false, nil
	}
}
