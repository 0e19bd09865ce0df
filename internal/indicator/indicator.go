// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"errors"
	"fmt"
	"time"
)

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Fixed palette.
var (
	Off     = Color{}
	Red     = Color{R: 255}
	Green   = Color{G: 255}
	Blue    = Color{B: 255}
	Yellow  = Color{R: 255, G: 255}
	Magenta = Color{R: 128, B: 128}
)

var colorNames = map[Color]string{
	Off:     "off",
	Red:     "red",
	Green:   "green",
	Blue:    "blue",
	Yellow:  "yellow",
	Magenta: "magenta",
}

// Signal is a color shown for a fixed duration.
type Signal struct {
	Name     string
	Color    Color
	Duration time.Duration
}

// Signals shown by the lock.
var (
	SignalReset       = Signal{Name: "reset", Color: Magenta, Duration: 1500 * time.Millisecond}
	SignalRecordStart = Signal{Name: "record", Color: Green, Duration: 100 * time.Millisecond}
	SignalLocked      = Signal{Name: "locked", Color: Blue, Duration: 100 * time.Millisecond}
	SignalVerifyStart = Signal{Name: "verify", Color: Yellow, Duration: 100 * time.Millisecond}
	SignalSuccess     = Signal{Name: "success", Color: Green, Duration: 3000 * time.Millisecond}
	SignalFailure     = Signal{Name: "failure", Color: Red, Duration: 3000 * time.Millisecond}
)

// Indicator shows a color for a duration and then clears it. Display blocks
// for the whole duration.
type Indicator interface {
	Display(c Color, d time.Duration) error
}

// Show displays s on ind.
func Show(ind Indicator, s Signal) error {
	if err := ind.Display(s.Color, s.Duration); err != nil {
		return fmt.Errorf("signal %s: %w", s.Name, err)
	}
	return nil
}

// Light is an output that can hold a color until told otherwise.
type Light interface {
	Set(c Color) error
	Clear() error
}

// Lights turns a set of Lights into an Indicator: every light is set, the
// caller is blocked for the duration, then every light is cleared.
type Lights struct {
	lights []Light
	sleep  func(time.Duration)
}

// NewLights returns an Indicator driving all of ls together.
func NewLights(ls ...Light) *Lights {
	return &Lights{lights: ls, sleep: time.Sleep}
}

// WithSleep replaces the function used to hold a color.
func (l *Lights) WithSleep(sleep func(time.Duration)) *Lights {
	l.sleep = sleep
	return l
}

// Display implements Indicator.
func (l *Lights) Display(c Color, d time.Duration) error {
	for _, light := range l.lights {
		if err := light.Set(c); err != nil {
			return fmt.Errorf("set %s: %w", c, err)
		}
	}
	l.sleep(d)
	return l.Clear()
}

// Clear switches every light off, reporting all failures.
func (l *Lights) Clear() error {
	var errs []error
	for _, light := range l.lights {
		if err := light.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear: %w", errors.Join(errs...))
	}
	return nil
}
