// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Guided threshold calibration for the gesture lock.
// Records one key gesture and then a number of repeated attempts with the
// configured sampler, and prints score and total displacement difference for
// each attempt next to the configured thresholds.
//
// Output:
//
//	Writes a JSON summary (no movement data) to ./gesture_calibration.json.
//
// Run:
//
//	go run ./cmd/calibration -attempts 10
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/relabs-tech/gesture_lock/internal/app"
	"github.com/relabs-tech/gesture_lock/internal/config"
)

func main() {
	configPath := flag.String("config", "gesture_lock_config.txt", "Path to configuration file")
	attempts := flag.Int("attempts", 5, "Number of repeated attempts to score against the key")
	out := flag.String("out", app.DefaultCalibrationFile, "Path of the JSON summary")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	if err := app.RunCalibration(*attempts, *out); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
