// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gesture_lock/internal/config"
	"github.com/relabs-tech/gesture_lock/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served on the local network
	},
}

// Status is the body of /api/status.
type Status struct {
	State     telemetry.StateMessage `json:"state"`
	LastEvent *telemetry.Message     `json:"last_event,omitempty"`
}

// dashboard keeps the latest telemetry and fans event messages out to
// websocket clients.
type dashboard struct {
	mu        sync.RWMutex
	state     telemetry.StateMessage
	haveState bool
	lastEvent *telemetry.Message

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

func newDashboard() *dashboard {
	return &dashboard{clients: make(map[*websocket.Conn]struct{})}
}

func (d *dashboard) onState(payload []byte) {
	var s telemetry.StateMessage
	if err := json.Unmarshal(payload, &s); err != nil {
		log.Printf("web: state unmarshal error: %v", err)
		return
	}
	d.mu.Lock()
	d.state = s
	d.haveState = true
	d.mu.Unlock()
}

func (d *dashboard) onEvent(payload []byte) {
	var m telemetry.Message
	if err := json.Unmarshal(payload, &m); err != nil {
		log.Printf("web: event unmarshal error: %v", err)
		return
	}
	d.mu.Lock()
	d.lastEvent = &m
	d.state = telemetry.StateMessage{Time: m.Time, State: m.State}
	d.haveState = true
	d.mu.Unlock()

	d.broadcast(m)
}

// broadcast sends v to every client, dropping clients that fail.
func (d *dashboard) broadcast(v any) {
	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()

	for conn := range d.clients {
		if err := conn.WriteJSON(v); err != nil {
			log.Printf("web: websocket write error: %v", err)
			conn.Close()
			delete(d.clients, conn)
		}
	}
}

func (d *dashboard) handleStatus(w http.ResponseWriter, _ *http.Request) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.haveState {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Status{State: d.state, LastEvent: d.lastEvent}); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (d *dashboard) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	d.clientsMu.Lock()
	d.clients[conn] = struct{}{}
	d.clientsMu.Unlock()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	d.clientsMu.Lock()
	if _, ok := d.clients[conn]; ok {
		delete(d.clients, conn)
		conn.Close()
	}
	d.clientsMu.Unlock()
}

func (d *dashboard) routes(webRoot string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", d.handleStatus)
	mux.HandleFunc("/ws", d.handleWS)
	mux.Handle("/", http.FileServer(http.Dir(webRoot)))
	return mux
}

// RunWeb serves the dashboard, fed by the lock telemetry topics.
func RunWeb() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("web: MQTT_BROKER is not set")
	}
	d := newDashboard()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	subs := map[string]func([]byte){
		cfg.TopicLockState:  d.onState,
		cfg.TopicLockEvents: d.onEvent,
	}
	for topic, handle := range subs {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			handle(msg.Payload())
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to MQTT topic %s", topic)
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s (static files from %s)", addr, cfg.WebRoot)
	return http.ListenAndServe(addr, d.routes(cfg.WebRoot))
}
