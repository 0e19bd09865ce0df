// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lock

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultPollInterval is the input polling tick.
const DefaultPollInterval = 100 * time.Millisecond

// Input exposes the two momentary inputs, true while held.
type Input interface {
	Read() (record, verify bool, err error)
}

// Step reads the inputs once and handles the resulting event.
func (c *Controller) Step(in Input) error {
	record, verify, err := in.Read()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return c.Handle(Classify(record, verify))
}

// Run polls in every interval until ctx is done or a hardware error occurs.
// Captures and signals block the loop; cancellation is only noticed between
// ticks.
func (c *Controller) Run(ctx context.Context, in Input, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("lock: polling inputs every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("lock: stopping")
			return nil
		case <-ticker.C:
			if err := c.Step(in); err != nil {
				return err
			}
		}
	}
}
