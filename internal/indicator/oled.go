// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"fmt"
	"image"
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// Screen is a monochrome SSD1306 status screen used as a Light. It cannot
// show colors, so it prints the color name and inverts the screen while lit.
type Screen struct {
	bus   i2c.BusCloser
	dev   *ssd1306.Dev
	title string
}

// NewScreen opens the SSD1306 on the named I²C bus ("" for the default bus).
func NewScreen(busName, title string) (*Screen, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("screen: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("screen: open I2C bus %q: %w", busName, err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("screen: init: %w", err)
	}
	log.Printf("screen: SSD1306 initialized on I2C bus %q", busName)

	s := &Screen{bus: bus, dev: dev, title: title}
	if err := s.Clear(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Set shows the color name on an inverted screen.
func (s *Screen) Set(c Color) error {
	return s.draw(true, s.title, strings.ToUpper(c.String()))
}

// Clear shows the idle screen.
func (s *Screen) Clear() error {
	return s.draw(false, s.title, "Ready")
}

// Close releases the I²C bus.
func (s *Screen) Close() error {
	return s.bus.Close()
}

func (s *Screen) draw(inverted bool, lines ...string) error {
	img := image1bit.NewVerticalLSB(s.dev.Bounds())

	bg, fg := image1bit.Off, image1bit.On
	if inverted {
		bg, fg = image1bit.On, image1bit.Off
	}
	for i := range img.Pix {
		if bg {
			img.Pix[i] = 0xFF
		} else {
			img.Pix[i] = 0
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{fg},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(4, 20+i*18)
		drawer.DrawBytes([]byte(line))
	}

	if err := s.dev.Draw(s.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("screen: draw: %w", err)
	}
	return nil
}
