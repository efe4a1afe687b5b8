package streaming

import (
	"encoding/json"
	"time"

	"github.com/OCAP2/boarding/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartScenario = "start_scenario"
	TypeEndScenario   = "end_scenario"
	TypeAddVehicle    = "add_vehicle"
	TypeNotice        = "notice"
	TypeHitEvent      = "hit_event"
	TypePerformance   = "performance"
	TypeAck           = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartScenarioPayload carries the scenario being recorded.
type StartScenarioPayload struct {
	Scenario *core.Scenario `json:"scenario"`
}

// AddVehiclePayload carries a vehicle as first seen by the recorder.
type AddVehiclePayload struct {
	Vehicle  *core.Vehicle `json:"vehicle"`
	JoinTick uint64        `json:"joinTick"`
	JoinTime time.Time     `json:"joinTime"`
}
