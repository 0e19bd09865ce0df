// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lock

// State is the lock state.
type State int

const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// Event is what one poll tick of the two inputs means.
type Event int

const (
	NoEvent Event = iota
	ResetEvent
	RecordEvent
	VerifyEvent
)

func (e Event) String() string {
	switch e {
	case NoEvent:
		return "none"
	case ResetEvent:
		return "reset"
	case RecordEvent:
		return "record"
	case VerifyEvent:
		return "verify"
	default:
		return "unknown"
	}
}

// Classify maps the two inputs of one tick to an event. Both inputs
// together take priority over either alone.
func Classify(record, verify bool) Event {
	switch {
	case record && verify:
		return ResetEvent
	case record:
		return RecordEvent
	case verify:
		return VerifyEvent
	default:
		return NoEvent
	}
}
