// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"

	"github.com/relabs-tech/gesture_lock/internal/motion"
)

type mockSource struct {
	n int
}

// NewMockSource creates a sampler that generates the same smooth wave on
// every capture, so a recorded key always verifies.
func NewMockSource() motion.Sampler {
	return &mockSource{}
}

func (m *mockSource) Sample() (motion.Sample, error) {
	phase := float64(m.n%motion.SampleCount) / motion.SampleCount * 2 * math.Pi
	m.n++

	return motion.Sample{
		X: 3 * math.Sin(phase),
		Y: 2 * math.Cos(phase*0.7),
		Z: StandardGravity,
	}, nil
}
