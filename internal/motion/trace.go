// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// SampleCount is the fixed number of samples per channel in a Trace.
const SampleCount = 50

// Sample is one instantaneous three-axis acceleration reading (m/s²).
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Trace is a fixed-length capture of a movement. Index i of X, Y and Z
// belongs to the same instant.
type Trace struct {
	X [SampleCount]float64 `json:"x"`
	Y [SampleCount]float64 `json:"y"`
	Z [SampleCount]float64 `json:"z"`
}

// Set stores s at index i of every channel.
func (t *Trace) Set(i int, s Sample) {
	t.X[i] = s.X
	t.Y[i] = s.Y
	t.Z[i] = s.Z
}

// At returns the sample stored at index i.
func (t Trace) At(i int) Sample {
	return Sample{X: t.X[i], Y: t.Y[i], Z: t.Z[i]}
}

// Channels returns the three channels in x, y, z order.
func (t *Trace) Channels() [3]*[SampleCount]float64 {
	return [3]*[SampleCount]float64{&t.X, &t.Y, &t.Z}
}

// Constant returns a Trace holding s at every index.
func Constant(s Sample) Trace {
	var t Trace
	for i := 0; i < SampleCount; i++ {
		t.Set(i, s)
	}
	return t
}

// Sampler is anything that can provide an acceleration reading on demand.
// Each call is a fresh sample; nothing is buffered.
type Sampler interface {
	Sample() (Sample, error)
}
