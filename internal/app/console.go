// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_lock/internal/config"
	"github.com/relabs-tech/gesture_lock/internal/telemetry"
)

// RunConsole prints lock telemetry from MQTT until Ctrl+C.
func RunConsole() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is not set")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	eventsToken := client.Subscribe(cfg.TopicLockEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		printEvent(os.Stdout, msg.Payload())
	})
	eventsToken.Wait()
	if eventsToken.Error() != nil {
		return eventsToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicLockEvents)

	stateToken := client.Subscribe(cfg.TopicLockState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		printState(os.Stdout, msg.Payload())
	})
	stateToken.Wait()
	if stateToken.Error() != nil {
		return stateToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicLockState)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func printEvent(w io.Writer, payload []byte) {
	var m telemetry.Message
	if err := json.Unmarshal(payload, &m); err != nil {
		log.Printf("console: event unmarshal error: %v", err)
		return
	}

	if m.Score == nil || m.TotalDiff == nil || m.Success == nil {
		fmt.Fprintf(w, "[EVENT] %s  %-6s -> %s\n", m.Time, m.Event, m.State)
		return
	}
	verdict := "FAIL"
	if *m.Success {
		verdict = "PASS"
	}
	fmt.Fprintf(w, "[EVENT] %s  %-6s -> %s  score=%.2f total_diff=%.1f %s\n",
		m.Time, m.Event, m.State, *m.Score, *m.TotalDiff, verdict)
}

func printState(w io.Writer, payload []byte) {
	var s telemetry.StateMessage
	if err := json.Unmarshal(payload, &s); err != nil {
		log.Printf("console: state unmarshal error: %v", err)
		return
	}
	fmt.Fprintf(w, "[STATE] %s  %s\n", s.Time, s.State)
}
