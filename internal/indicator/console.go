// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"fmt"
	"io"
)

// ConsoleLight prints color changes, for running without an LED.
type ConsoleLight struct {
	w io.Writer
}

// NewConsoleLight returns a Light writing to w.
func NewConsoleLight(w io.Writer) *ConsoleLight {
	return &ConsoleLight{w: w}
}

func (c *ConsoleLight) Set(col Color) error {
	_, err := fmt.Fprintf(c.w, "[LED] %s\n", col)
	return err
}

func (c *ConsoleLight) Clear() error {
	_, err := fmt.Fprintln(c.w, "[LED] off")
	return err
}
