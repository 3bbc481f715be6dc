// Package streaming defines the wire format spoken to a live scene viewer.
package streaming

import (
	"encoding/json"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartScene   = "start_scene"
	TypeEndScene     = "end_scene"
	TypeAddPolygon   = "add_polygon"
	TypeAddPoint     = "add_point"
	TypeAddLine      = "add_line"
	TypeAddBillboard = "add_billboard"
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

// StartScenePayload announces a new scene; the viewer clears what it shows.
type StartScenePayload struct {
	Name      string `json:"name"`
	StartedAt string `json:"startedAt"`
}

// EndScenePayload closes a scene with the number of primitives sent.
type EndScenePayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
