// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/gesture_lock/internal/config"
	"github.com/relabs-tech/gesture_lock/internal/indicator"
	"github.com/relabs-tech/gesture_lock/internal/lock"
	"github.com/relabs-tech/gesture_lock/internal/motion"
	"github.com/relabs-tech/gesture_lock/internal/sensors"
	"github.com/relabs-tech/gesture_lock/internal/similarity"
	"github.com/relabs-tech/gesture_lock/internal/telemetry"
)

// closers releases hardware handles in reverse order of acquisition.
type closers []io.Closer

func (c *closers) add(cl io.Closer) {
	*c = append(*c, cl)
}

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			log.Printf("lock: close error: %v", err)
		}
	}
}

// RunLock runs the gesture lock device until SIGINT/SIGTERM or a hardware error.
func RunLock() error {
	cfg := config.Get()
	log.Printf("starting gesture lock (sampler=%s, input=%s, indicator=%s)", cfg.Sampler, cfg.Input, cfg.Indicator)

	var cls closers
	defer cls.closeAll()

	sampler, err := newSampler(cfg, &cls)
	if err != nil {
		return err
	}

	in, err := newInput(cfg, os.Stdin)
	if err != nil {
		return err
	}

	lights, err := newLights(cfg, os.Stdout, &cls)
	if err != nil {
		return err
	}
	defer func() {
		if err := lights.Clear(); err != nil {
			log.Printf("lock: clear lights: %v", err)
		}
	}()

	var observers []lock.Observer
	if cfg.MQTTBroker != "" {
		pub, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDLock, cfg.TopicLockEvents, cfg.TopicLockState)
		if err != nil {
			return err
		}
		defer pub.Close()
		pub.PublishState(lock.Unlocked, time.Now())
		observers = append(observers, pub)
	} else {
		log.Println("lock: MQTT_BROKER not set, telemetry disabled")
	}

	if cfg.MetricsAddr != "" {
		m := telemetry.NewMetrics()
		m.Serve(cfg.MetricsAddr)
		observers = append(observers, m)
	}

	rec := motion.NewRecorder(sampler, time.Duration(cfg.SampleInterval)*time.Millisecond)
	ctrl := lock.NewController(rec, similarity.NewScorer(cfg.Thresholds), lights, observers...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Input == config.InputStdin {
		fmt.Println("commands: r = record, v = verify, x = reset")
	}
	return ctrl.Run(ctx, in, time.Duration(cfg.PollInterval)*time.Millisecond)
}

// newSampler opens the configured acceleration source. Handles that need
// closing are registered on cls.
func newSampler(cfg *config.Config, cls *closers) (motion.Sampler, error) {
	switch cfg.Sampler {
	case config.SamplerMPU9250:
		s, err := sensors.NewIMUSource(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange)
		if err != nil {
			return nil, fmt.Errorf("init MPU9250 sampler: %w", err)
		}
		return s, nil
	case config.SamplerSerial:
		s, port, err := sensors.NewSerialSource(cfg.SerialPort, uint(cfg.SerialBaudRate))
		if err != nil {
			return nil, fmt.Errorf("init serial sampler: %w", err)
		}
		cls.add(port)
		return s, nil
	case config.SamplerMock:
		log.Println("using mock acceleration source")
		return sensors.NewMockSource(), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q", cfg.Sampler)
	}
}

// newInput returns the button adapter, or a command reader on stdin.
func newInput(cfg *config.Config, stdin io.Reader) (lock.Input, error) {
	switch cfg.Input {
	case config.InputGPIO:
		b, err := sensors.NewButtons(cfg.ButtonRecordPin, cfg.ButtonVerifyPin)
		if err != nil {
			return nil, fmt.Errorf("init buttons: %w", err)
		}
		return b, nil
	case config.InputStdin:
		return sensors.NewLineInput(stdin), nil
	default:
		return nil, fmt.Errorf("unknown input %q", cfg.Input)
	}
}

// newLights builds the indicator from the configured light plus the optional
// status screen.
func newLights(cfg *config.Config, out io.Writer, cls *closers) (*indicator.Lights, error) {
	var ls []indicator.Light

	switch cfg.Indicator {
	case config.IndicatorRGB:
		led, err := indicator.NewRGBLED(cfg.LEDRedPin, cfg.LEDGreenPin, cfg.LEDBluePin, cfg.LEDActiveLow)
		if err != nil {
			return nil, fmt.Errorf("init RGB LED: %w", err)
		}
		ls = append(ls, led)
	case config.IndicatorConsole:
		ls = append(ls, indicator.NewConsoleLight(out))
	default:
		return nil, fmt.Errorf("unknown indicator %q", cfg.Indicator)
	}

	if cfg.DisplayEnabled {
		screen, err := indicator.NewScreen(cfg.DisplayI2CBus, "GESTURE LOCK")
		if err != nil {
			return nil, fmt.Errorf("init status screen: %w", err)
		}
		cls.add(screen)
		ls = append(ls, screen)
	}

	return indicator.NewLights(ls...), nil
}
