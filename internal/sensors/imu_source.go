// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/gesture_lock/internal/motion"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// StandardGravity converts g to m/s².
const StandardGravity = 9.80665

// imuSource samples the MPU9250 accelerometer over SPI.
type imuSource struct {
	imu        *mpu9250.MPU9250
	countsPerG float64
}

// NewIMUSource initializes an MPU9250 on spiDev with chip select csPin.
// accelRange is 0=±2g, 1=±4g, 2=±8g, 3=±16g.
func NewIMUSource(spiDev, csPin string, accelRange byte) (motion.Sampler, error) {
	if accelRange > 3 {
		return nil, fmt.Errorf("imu: accel range must be 0-3, got %d", accelRange)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("imu: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("imu: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("imu: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("imu: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("imu: initialization: %w", err)
	}

	if _, err := dev.SelfTest(); err != nil {
		log.Printf("imu: WARNING: self-test failed: %v", err)
	}
	if err := dev.Calibrate(); err != nil {
		log.Printf("imu: WARNING: calibration failed: %v", err)
	} else {
		log.Println("imu: calibration complete")
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("imu: set accel range: %w", err)
	}
	log.Printf("imu: accelerometer range set to %d (±%dg)", accelRange, []int{2, 4, 8, 16}[accelRange])

	return &imuSource{
		imu:        dev,
		countsPerG: CountsPerG(accelRange),
	}, nil
}

// CountsPerG is the raw accelerometer sensitivity for a range setting.
func CountsPerG(accelRange byte) float64 {
	return float64(int(16384) >> accelRange)
}

// CountsToMS2 converts a raw accelerometer reading to m/s².
func CountsToMS2(raw int16, countsPerG float64) float64 {
	return float64(raw) / countsPerG * StandardGravity
}

// Sample reads the three accelerometer axes.
func (s *imuSource) Sample() (motion.Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("imu accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("imu accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("imu accel Z: %w", err)
	}

	return motion.Sample{
		X: CountsToMS2(ax, s.countsPerG),
		Y: CountsToMS2(ay, s.countsPerG),
		Z: CountsToMS2(az, s.countsPerG),
	}, nil
}
