// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/gesture_lock/internal/similarity"
)

// Sampler kinds.
const (
	SamplerMPU9250 = "mpu9250"
	SamplerSerial  = "serial"
	SamplerMock    = "mock"
)

// Input kinds.
const (
	InputGPIO  = "gpio"
	InputStdin = "stdin"
)

// Indicator kinds.
const (
	IndicatorRGB     = "rgb"
	IndicatorConsole = "console"
)

// Config holds all application configuration values.
type Config struct {
	// Sampling
	Sampler        string
	SampleInterval int // milliseconds
	IMUSPIDevice   string
	IMUCSPin       string
	IMUAccelRange  byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	SerialPort     string
	SerialBaudRate int

	// Buttons
	Input           string
	ButtonRecordPin string
	ButtonVerifyPin string
	PollInterval    int // milliseconds

	// Indicator
	Indicator      string
	LEDRedPin      string
	LEDGreenPin    string
	LEDBluePin     string
	LEDActiveLow   bool
	DisplayEnabled bool
	DisplayI2CBus  string

	// Scoring calibration
	Thresholds similarity.Thresholds

	// MQTT
	MQTTBroker          string
	MQTTClientIDLock    string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string

	// Topics
	TopicLockEvents string
	TopicLockState  string

	// Metrics and web
	MetricsAddr   string
	WebServerPort int
	WebRoot       string
}

// Package-level state for the process-wide configuration: InitGlobal sets it
// once, Get reads it under a read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Sampler:        SamplerMPU9250,
		SampleInterval: 100,
		IMUSPIDevice:   "/dev/spidev0.0",
		IMUCSPin:       "8",
		IMUAccelRange:  1,
		SerialPort:     "/dev/ttyACM0",
		SerialBaudRate: 115200,

		Input:           InputGPIO,
		ButtonRecordPin: "17",
		ButtonVerifyPin: "27",
		PollInterval:    100,

		Indicator:     IndicatorRGB,
		LEDRedPin:     "22",
		LEDGreenPin:   "23",
		LEDBluePin:    "24",
		DisplayI2CBus: "",

		Thresholds: similarity.DefaultThresholds(),

		MQTTClientIDLock:    "gesture-lock",
		MQTTClientIDConsole: "gesture-lock-console",
		MQTTClientIDWeb:     "gesture-lock-web",
		TopicLockEvents:     "gesture_lock/events",
		TopicLockState:      "gesture_lock/state",

		WebServerPort: 8080,
		WebRoot:       "web",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parsePositiveInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0, got %d", key, v)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func oneOf(key, value string, allowed ...string) (string, error) {
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), value)
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Sampling
	case "SAMPLER":
		c.Sampler, err = oneOf(key, value, SamplerMPU9250, SamplerSerial, SamplerMock)
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parsePositiveInt(key, value)
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parsePositiveInt(key, value)

	// Buttons
	case "INPUT":
		c.Input, err = oneOf(key, value, InputGPIO, InputStdin)
	case "BUTTON_RECORD_PIN":
		c.ButtonRecordPin = value
	case "BUTTON_VERIFY_PIN":
		c.ButtonVerifyPin = value
	case "POLL_INTERVAL":
		c.PollInterval, err = parsePositiveInt(key, value)

	// Indicator
	case "INDICATOR":
		c.Indicator, err = oneOf(key, value, IndicatorRGB, IndicatorConsole)
	case "LED_RED_PIN":
		c.LEDRedPin = value
	case "LED_GREEN_PIN":
		c.LEDGreenPin = value
	case "LED_BLUE_PIN":
		c.LEDBluePin = value
	case "LED_ACTIVE_LOW":
		c.LEDActiveLow, err = parseBool(key, value)
	case "DISPLAY_ENABLED":
		c.DisplayEnabled, err = parseBool(key, value)
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	// Scoring calibration
	case "TOLERANCE_LOW":
		c.Thresholds.ToleranceLow, err = parseFloat(key, value)
	case "TOLERANCE_HIGH":
		c.Thresholds.ToleranceHigh, err = parseFloat(key, value)
	case "SUCCESS_THRESHOLD":
		c.Thresholds.SuccessThreshold, err = parseFloat(key, value)
	case "MAX_TOTAL_DIFF":
		c.Thresholds.MaxTotalDiff, err = parseFloat(key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LOCK":
		c.MQTTClientIDLock = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_LOCK_EVENTS":
		c.TopicLockEvents = value
	case "TOPIC_LOCK_STATE":
		c.TopicLockState = value

	// Metrics and web
	case "METRICS_ADDR":
		c.MetricsAddr = value
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parsePositiveInt(key, value)
	case "WEB_ROOT":
		c.WebRoot = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("scoring thresholds: %w", err)
	}
	if c.Sampler == SamplerSerial && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required when SAMPLER=serial")
	}
	if c.Input == InputGPIO && (c.ButtonRecordPin == "" || c.ButtonVerifyPin == "") {
		return fmt.Errorf("BUTTON_RECORD_PIN and BUTTON_VERIFY_PIN are required when INPUT=gpio")
	}
	if c.Indicator == IndicatorRGB && (c.LEDRedPin == "" || c.LEDGreenPin == "" || c.LEDBluePin == "") {
		return fmt.Errorf("LED_RED_PIN, LED_GREEN_PIN and LED_BLUE_PIN are required when INDICATOR=rgb")
	}
	if c.MQTTBroker != "" && (c.TopicLockEvents == "" || c.TopicLockState == "") {
		return fmt.Errorf("TOPIC_LOCK_EVENTS and TOPIC_LOCK_STATE are required when MQTT_BROKER is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads the file.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
