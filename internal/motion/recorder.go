// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"time"
)

// DefaultInterval is the pause between two samples of a capture.
const DefaultInterval = 100 * time.Millisecond

// Recorder fills Traces from a Sampler at a fixed cadence.
type Recorder struct {
	sampler  Sampler
	interval time.Duration
	sleep    func(time.Duration)
}

// NewRecorder returns a Recorder sampling src once per interval.
// A non-positive interval falls back to DefaultInterval.
func NewRecorder(src Sampler, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Recorder{sampler: src, interval: interval, sleep: time.Sleep}
}

// WithSleep replaces the function used to wait between samples.
func (r *Recorder) WithSleep(sleep func(time.Duration)) *Recorder {
	r.sleep = sleep
	return r
}

// Interval returns the pause between two samples.
func (r *Recorder) Interval() time.Duration {
	return r.interval
}

// Capture blocks for SampleCount intervals and returns the recorded Trace.
// There is no retry: the first sampler error aborts the capture.
func (r *Recorder) Capture() (Trace, error) {
	var t Trace
	for i := 0; i < SampleCount; i++ {
		s, err := r.sampler.Sample()
		if err != nil {
			return Trace{}, fmt.Errorf("capture sample %d: %w", i, err)
		}
		t.Set(i, s)
		r.sleep(r.interval)
	}
	return t, nil
}
