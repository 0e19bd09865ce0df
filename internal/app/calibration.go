// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/relabs-tech/gesture_lock/internal/config"
	"github.com/relabs-tech/gesture_lock/internal/lock"
	"github.com/relabs-tech/gesture_lock/internal/motion"
	"github.com/relabs-tech/gesture_lock/internal/similarity"
)

// DefaultCalibrationFile is where RunCalibration stores its report.
const DefaultCalibrationFile = "gesture_calibration.json"

// Attempt is the outcome of one repeated gesture.
type Attempt struct {
	Score     float64 `json:"score"`
	TotalDiff float64 `json:"total_diff"`
	Success   bool    `json:"success"`
}

// Summary holds min/max/mean of one attempt statistic.
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// CalibrationReport is written as JSON. It never contains the traces.
type CalibrationReport struct {
	SchemaVersion    int       `json:"schema_version"`
	CalibrationAt    string    `json:"calibration_at"` // RFC3339
	Sampler          string    `json:"sampler"`
	SampleIntervalMS int       `json:"sample_interval_ms"`
	ToleranceLow     float64   `json:"tolerance_low"`
	ToleranceHigh    float64   `json:"tolerance_high"`
	SuccessThreshold float64   `json:"success_threshold"`
	MaxTotalDiff     float64   `json:"max_total_diff"`
	Attempts         []Attempt `json:"attempts"`
	Passed           int       `json:"passed"`
	Score            Summary   `json:"score"`
	TotalDiff        Summary   `json:"total_diff"`
}

// RunCalibration records a key and the given number of attempts with the
// configured sampler, prints per-attempt results and writes the summary to
// outPath.
func RunCalibration(attempts int, outPath string) error {
	if attempts <= 0 {
		return fmt.Errorf("calibration: attempts must be > 0, got %d", attempts)
	}
	cfg := config.Get()

	var cls closers
	defer cls.closeAll()

	sampler, err := newSampler(cfg, &cls)
	if err != nil {
		return err
	}
	rec := motion.NewRecorder(sampler, time.Duration(cfg.SampleInterval)*time.Millisecond)
	scorer := similarity.NewScorer(cfg.Thresholds)

	fmt.Println("=== Gesture Lock Calibration ===")
	fmt.Printf("Each capture takes %s. Results are stored in %s (no movement data is saved).\n",
		rec.Interval()*motion.SampleCount, outPath)
	fmt.Println()

	report, err := calibrate(bufio.NewReader(os.Stdin), os.Stdout, rec, scorer, attempts)
	if err != nil {
		return err
	}
	report.Sampler = cfg.Sampler
	report.SampleIntervalMS = cfg.SampleInterval

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return fmt.Errorf("calibration: write %s: %w", outPath, err)
	}
	fmt.Printf("\nWrote: %s\n", outPath)
	return nil
}

// calibrate runs the prompt flow: one key capture followed by the attempts.
func calibrate(in *bufio.Reader, out io.Writer, c lock.Capturer, s *similarity.Scorer, attempts int) (CalibrationReport, error) {
	th := s.Thresholds()
	report := CalibrationReport{
		SchemaVersion:    1,
		CalibrationAt:    time.Now().Format(time.RFC3339),
		ToleranceLow:     th.ToleranceLow,
		ToleranceHigh:    th.ToleranceHigh,
		SuccessThreshold: th.SuccessThreshold,
		MaxTotalDiff:     th.MaxTotalDiff,
	}

	fmt.Fprintln(out, "Step 1 - Record the key gesture")
	waitEnter(in, out, "Press ENTER, then perform the gesture...")
	key, err := c.Capture()
	if err != nil {
		return report, fmt.Errorf("capture key: %w", err)
	}
	fmt.Fprintln(out, "Key recorded.")

	fmt.Fprintf(out, "\nStep 2 - Repeat the gesture %d times\n", attempts)
	for i := 1; i <= attempts; i++ {
		waitEnter(in, out, fmt.Sprintf("Attempt %d/%d: press ENTER, then repeat the gesture...", i, attempts))
		test, err := c.Capture()
		if err != nil {
			return report, fmt.Errorf("capture attempt %d: %w", i, err)
		}

		res := s.Score(test, key)
		a := Attempt{Score: res.Score, TotalDiff: res.TotalDiff, Success: res.Success}
		report.Attempts = append(report.Attempts, a)
		if a.Success {
			report.Passed++
		}
		fmt.Fprintf(out, "  score=%.2f total_diff=%.1f %s\n", a.Score, a.TotalDiff, verdictLabel(a.Success))
	}

	report.Score = summarize(report.Attempts, func(a Attempt) float64 { return a.Score })
	report.TotalDiff = summarize(report.Attempts, func(a Attempt) float64 { return a.TotalDiff })

	fmt.Fprintf(out, "\nPassed %d/%d attempts\n", report.Passed, len(report.Attempts))
	fmt.Fprintf(out, "Score:      min=%.2f max=%.2f mean=%.2f\n", report.Score.Min, report.Score.Max, report.Score.Mean)
	fmt.Fprintf(out, "Total diff: min=%.1f max=%.1f mean=%.1f\n", report.TotalDiff.Min, report.TotalDiff.Max, report.TotalDiff.Mean)
	return report, nil
}

func summarize(attempts []Attempt, f func(Attempt) float64) Summary {
	if len(attempts) == 0 {
		return Summary{}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, a := range attempts {
		v := f(a)
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
	}
	s.Mean /= float64(len(attempts))
	return s
}

func verdictLabel(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func waitEnter(in *bufio.Reader, out io.Writer, prompt string) {
	fmt.Fprint(out, prompt)
	_, _ = in.ReadString('\n')
	fmt.Fprintln(out)
}
