// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_lock/internal/lock"
)

// publishTimeout bounds how long the lock loop waits on the broker.
const publishTimeout = time.Second

// Publisher sends lock reports to MQTT. Failures are logged, never returned:
// the lock keeps working without a broker.
type Publisher struct {
	client      mqtt.Client
	eventsTopic string
	stateTopic  string
}

// Connect opens an MQTT connection to broker and returns a Publisher.
func Connect(broker, clientID, eventsTopic, stateTopic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(time.Minute)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("telemetry: connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	switch {
	case !token.WaitTimeout(10 * time.Second):
		log.Printf("telemetry: broker %s not reachable yet, retrying in background", broker)
	case token.Error() != nil:
		return nil, fmt.Errorf("telemetry: MQTT connect %s: %w", broker, token.Error())
	default:
		log.Printf("telemetry: connected to MQTT broker at %s", broker)
	}

	return NewPublisher(client, eventsTopic, stateTopic), nil
}

// NewPublisher wraps an existing client.
func NewPublisher(client mqtt.Client, eventsTopic, stateTopic string) *Publisher {
	return &Publisher{client: client, eventsTopic: eventsTopic, stateTopic: stateTopic}
}

// PublishState publishes s as the retained current state.
func (p *Publisher) PublishState(s lock.State, at time.Time) {
	p.publish(p.stateTopic, true, StateMessage{Time: at.UTC().Format(time.RFC3339), State: s.String()})
}

// Observe implements lock.Observer.
func (p *Publisher) Observe(r lock.Report) {
	p.publish(p.eventsTopic, false, NewMessage(r))
	p.PublishState(r.State, r.At)
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func (p *Publisher) publish(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("telemetry: json marshal error (%s): %v", topic, err)
		return
	}
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Printf("telemetry: publish timeout (%s)", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("telemetry: MQTT publish error (%s): %v", topic, err)
	}
}
