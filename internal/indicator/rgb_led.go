// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// RGBLED drives a three-pin RGB LED. A channel is lit whenever its
// component is non-zero.
type RGBLED struct {
	pins      [3]gpio.PinOut
	activeLow bool
}

// NewRGBLED opens the red, green and blue pins by name. activeLow is for
// common-anode LEDs.
func NewRGBLED(redPin, greenPin, bluePin string, activeLow bool) (*RGBLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: periph host init: %w", err)
	}

	var led RGBLED
	led.activeLow = activeLow
	for i, name := range []string{redPin, greenPin, bluePin} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("led: pin %q not found", name)
		}
		led.pins[i] = p
	}
	if err := led.Clear(); err != nil {
		return nil, err
	}
	log.Printf("led: RGB LED on pins R=%s G=%s B=%s (active low: %v)", redPin, greenPin, bluePin, activeLow)
	return &led, nil
}

func (l *RGBLED) level(on bool) gpio.Level {
	if l.activeLow {
		return gpio.Level(!on)
	}
	return gpio.Level(on)
}

// Set lights the channels of c.
func (l *RGBLED) Set(c Color) error {
	for i, v := range []uint8{c.R, c.G, c.B} {
		if err := l.pins[i].Out(l.level(v > 0)); err != nil {
			return fmt.Errorf("led: %s out: %w", l.pins[i], err)
		}
	}
	return nil
}

// Clear switches all channels off.
func (l *RGBLED) Clear() error {
	return l.Set(Off)
}
