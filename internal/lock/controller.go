// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package lock sequences recording, verification and reset of the gesture
// key and signals every transition on an indicator.
package lock

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/gesture_lock/internal/indicator"
	"github.com/relabs-tech/gesture_lock/internal/motion"
	"github.com/relabs-tech/gesture_lock/internal/similarity"
)

// Capturer records one movement. It blocks until the trace is complete.
type Capturer interface {
	Capture() (motion.Trace, error)
}

// Scorer compares an attempt against the key.
type Scorer interface {
	Score(test, key motion.Trace) similarity.Result
}

// Report describes one handled event.
type Report struct {
	Event  Event
	State  State
	Result *similarity.Result // set for verifications only
	At     time.Time
}

// Observer is told about every handled event, after its signals have been
// shown.
type Observer interface {
	Observe(r Report)
}

// Controller owns the key trace and the lock state. It is not safe for
// concurrent use: a single poll loop drives it.
type Controller struct {
	capture   Capturer
	scorer    Scorer
	ind       indicator.Indicator
	observers []Observer
	now       func() time.Time

	state State
	key   motion.Trace
}

// NewController returns an Unlocked controller.
func NewController(c Capturer, s Scorer, ind indicator.Indicator, observers ...Observer) *Controller {
	return &Controller{
		capture:   c,
		scorer:    s,
		ind:       ind,
		observers: observers,
		now:       time.Now,
		state:     Unlocked,
	}
}

// State returns the current lock state.
func (c *Controller) State() State {
	return c.state
}

// Key returns a copy of the stored key trace.
func (c *Controller) Key() motion.Trace {
	return c.key
}

// Handle applies ev. The returned error is a hardware failure; a rejected
// verification is not an error.
func (c *Controller) Handle(ev Event) error {
	var (
		res *similarity.Result
		err error
	)

	switch ev {
	case ResetEvent:
		err = c.reset()
	case RecordEvent:
		err = c.record()
	case VerifyEvent:
		if c.state != Locked {
			return nil
		}
		res, err = c.verify()
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ev, err)
	}

	c.notify(Report{Event: ev, State: c.state, Result: res, At: c.now()})
	return nil
}

func (c *Controller) reset() error {
	c.state = Unlocked
	log.Println("lock: reset, unlocked")
	return indicator.Show(c.ind, indicator.SignalReset)
}

func (c *Controller) record() error {
	if err := indicator.Show(c.ind, indicator.SignalRecordStart); err != nil {
		return err
	}

	log.Println("lock: recording key movement")
	key, err := c.capture.Capture()
	if err != nil {
		return err
	}
	c.key = key
	c.state = Locked
	log.Println("lock: key recorded, locked")

	return indicator.Show(c.ind, indicator.SignalLocked)
}

func (c *Controller) verify() (*similarity.Result, error) {
	if err := indicator.Show(c.ind, indicator.SignalVerifyStart); err != nil {
		return nil, err
	}

	log.Println("lock: recording attempt")
	test, err := c.capture.Capture()
	if err != nil {
		return nil, err
	}

	res := c.scorer.Score(test, c.key)
	log.Printf("lock: attempt total_diff=%.2f score=%.2f success=%v", res.TotalDiff, res.Score, res.Success)

	sig := indicator.SignalFailure
	if res.Success {
		sig = indicator.SignalSuccess
	}
	if err := indicator.Show(c.ind, sig); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Controller) notify(r Report) {
	for _, o := range c.observers {
		o.Observe(r)
	}
}
