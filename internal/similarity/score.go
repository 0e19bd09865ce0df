// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package similarity compares a movement attempt against a recorded key.
//
// Both traces are smoothed with a boundary-aware moving average, compared
// point by point with an L1 distance over the three axes, and judged by two
// independent gates: the fraction of points that matched and the total
// displacement difference over the whole movement.
package similarity

import (
	"fmt"
	"math"

	"github.com/relabs-tech/gesture_lock/internal/motion"
)

// Calibration defaults, tuned for an accelerometer reporting m/s² at a
// 100 ms sampling interval.
const (
	DefaultToleranceLow     = 4.0
	DefaultToleranceHigh    = 7.0
	DefaultSuccessThreshold = 0.90
	DefaultMaxTotalDiff     = 110.0
)

// Thresholds are the tunable constants of the scorer.
type Thresholds struct {
	ToleranceLow     float64 // d_i at or below this earns a full point
	ToleranceHigh    float64 // d_i above this earns nothing
	SuccessThreshold float64 // normalized score must be strictly above this
	MaxTotalDiff     float64 // total diff must be strictly below this
}

// DefaultThresholds returns the stock calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ToleranceLow:     DefaultToleranceLow,
		ToleranceHigh:    DefaultToleranceHigh,
		SuccessThreshold: DefaultSuccessThreshold,
		MaxTotalDiff:     DefaultMaxTotalDiff,
	}
}

// Validate reports whether the thresholds are usable.
func (t Thresholds) Validate() error {
	if t.ToleranceLow < 0 {
		return fmt.Errorf("tolerance low must be >= 0, got %g", t.ToleranceLow)
	}
	if t.ToleranceLow > t.ToleranceHigh {
		return fmt.Errorf("tolerance low (%g) must not exceed tolerance high (%g)", t.ToleranceLow, t.ToleranceHigh)
	}
	if t.SuccessThreshold < 0 || t.SuccessThreshold > 1 {
		return fmt.Errorf("success threshold must be within [0,1], got %g", t.SuccessThreshold)
	}
	if t.MaxTotalDiff <= 0 {
		return fmt.Errorf("max total diff must be > 0, got %g", t.MaxTotalDiff)
	}
	return nil
}

// Credit returns the per-point contribution of a combined distance d.
func (t Thresholds) Credit(d float64) float64 {
	switch {
	case d > t.ToleranceHigh:
		return 0
	case d <= t.ToleranceLow:
		return 1
	default:
		return 0.5
	}
}

// Verdict applies both gates.
func (t Thresholds) Verdict(normalized, totalDiff float64) bool {
	return totalDiff < t.MaxTotalDiff && normalized > t.SuccessThreshold
}

// Result is the outcome of one comparison. It is derived, never stored.
type Result struct {
	Score     float64 `json:"score"`      // normalized match fraction in [0,1]
	TotalDiff float64 `json:"total_diff"` // sum of combined distances
	Success   bool    `json:"success"`
}

// Scorer compares traces with a fixed set of thresholds.
type Scorer struct {
	th Thresholds
}

// NewScorer returns a Scorer using th.
func NewScorer(th Thresholds) *Scorer {
	return &Scorer{th: th}
}

// Thresholds returns the scorer's calibration.
func (s *Scorer) Thresholds() Thresholds {
	return s.th
}

// Score compares test against key.
func (s *Scorer) Score(test, key motion.Trace) Result {
	var raw, total float64
	for i := 0; i < motion.SampleCount; i++ {
		d := Distance(&test, &key, i)
		total += d
		raw += s.th.Credit(d)
	}
	normalized := raw / motion.SampleCount
	return Result{
		Score:     normalized,
		TotalDiff: total,
		Success:   s.th.Verdict(normalized, total),
	}
}

// Distance is the combined L1 distance between the smoothed values of a and
// b at index i.
func Distance(a, b *motion.Trace, i int) float64 {
	ca, cb := a.Channels(), b.Channels()
	var d float64
	for axis := range ca {
		d += math.Abs(Smoothed(ca[axis][:], i) - Smoothed(cb[axis][:], i))
	}
	return d
}

// Score compares test against key with the default thresholds.
func Score(test, key motion.Trace) Result {
	return NewScorer(DefaultThresholds()).Score(test, key)
}
