// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"time"

	"github.com/relabs-tech/gesture_lock/internal/lock"
)

// Message is the JSON payload published for every handled lock event.
// Traces are never included.
type Message struct {
	Time      string   `json:"time"`  // RFC3339
	Event     string   `json:"event"` // "reset", "record", "verify"
	State     string   `json:"state"` // "locked" or "unlocked"
	Score     *float64 `json:"score,omitempty"`
	TotalDiff *float64 `json:"total_diff,omitempty"`
	Success   *bool    `json:"success,omitempty"`
}

// StateMessage is the retained payload describing the current lock state.
type StateMessage struct {
	Time  string `json:"time"`
	State string `json:"state"`
}

// NewMessage converts a controller report into its wire form.
func NewMessage(r lock.Report) Message {
	m := Message{
		Time:  r.At.UTC().Format(time.RFC3339),
		Event: r.Event.String(),
		State: r.State.String(),
	}
	if r.Result != nil {
		score, diff, ok := r.Result.Score, r.Result.TotalDiff, r.Result.Success
		m.Score = &score
		m.TotalDiff = &diff
		m.Success = &ok
	}
	return m
}
