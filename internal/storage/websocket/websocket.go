// Package websocket streams boarding telemetry to a live viewer as it is recorded.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/boarding/pkg/core"
	"github.com/OCAP2/boarding/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams scenario data over WebSocket.
// It implements storage.Backend but not storage.Uploadable.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped returns how many messages were dropped on a full send buffer.
func (b *Backend) Dropped() uint64 {
	return b.conn.dropped.Load()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartScenario sends the scenario and waits for server ack.
func (b *Backend) StartScenario(s *core.Scenario) error {
	data, err := marshalEnvelope(streaming.TypeStartScenario, streaming.StartScenarioPayload{Scenario: s})
	if err != nil {
		return err
	}
	b.conn.setReplay(data)
	return b.conn.sendAndWait(data, streaming.TypeStartScenario, ackTimeout)
}

// EndScenario sends end_scenario and waits for server ack.
func (b *Backend) EndScenario() error {
	data, err := marshalEnvelope(streaming.TypeEndScenario, nil)
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndScenario, ackTimeout)
	b.conn.setReplay(nil)
	return err
}

func (b *Backend) AddVehicle(v *core.Vehicle, tick uint64, at time.Time) error {
	return b.sendEnvelope(streaming.TypeAddVehicle, streaming.AddVehiclePayload{Vehicle: v, JoinTick: tick, JoinTime: at})
}

func (b *Backend) RecordNotice(n *core.Notice) error {
	return b.sendEnvelope(streaming.TypeNotice, n)
}

func (b *Backend) RecordHitEvent(h *core.HitEvent) error {
	return b.sendEnvelope(streaming.TypeHitEvent, h)
}

func (b *Backend) RecordPerformance(p core.Performance) error {
	return b.sendEnvelope(streaming.TypePerformance, p)
}
