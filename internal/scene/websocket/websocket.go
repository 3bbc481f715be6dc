// Package websocket streams scene primitives to a live viewer bridge.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/globe/internal/model/core"
	"github.com/OCAP2/globe/pkg/streaming"
)

const defaultAckTimeout = 10 * time.Second

// Config holds WebSocket sink configuration.
type Config struct {
	URL        string
	Secret     string
	AckTimeout time.Duration
}

// Sink sends every primitive as a fire-and-forget envelope.
// Begin and End are acknowledged by the server.
type Sink struct {
	conn *connection
	cfg  Config

	mu    sync.Mutex
	name  string
	count int
}

// New creates a new WebSocket sink. A nil logger uses slog.Default().
func New(cfg Config, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	return &Sink{
		conn: newConnection(logger.With("component", "scene-websocket")),
		cfg:  cfg,
	}
}

// Connect dials the WebSocket server.
func (s *Sink) Connect(ctx context.Context) error {
	return s.conn.dial(ctx, s.cfg.URL, s.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (s *Sink) Close() error {
	return s.conn.close()
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

// messageType maps a primitive kind onto its envelope type.
func messageType(k core.PrimitiveKind) (string, error) {
	switch k {
	case core.KindPolygon:
		return streaming.TypeAddPolygon, nil
	case core.KindPoint:
		return streaming.TypeAddPoint, nil
	case core.KindLine:
		return streaming.TypeAddLine, nil
	case core.KindBillboard:
		return streaming.TypeAddBillboard, nil
	}
	return "", fmt.Errorf("unsupported primitive kind %q", k)
}

// Begin sends start_scene and waits for the server ack.
func (s *Sink) Begin(ctx context.Context, name string) error {
	data, err := marshalEnvelope(streaming.TypeStartScene, streaming.StartScenePayload{
		Name:      name,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.name = name
	s.count = 0
	s.mu.Unlock()

	// Cache for reconnect replay.
	s.conn.mu.Lock()
	s.conn.cachedStartMsg = data
	s.conn.mu.Unlock()

	return s.conn.sendAndWait(ctx, data, streaming.TypeStartScene, s.cfg.AckTimeout)
}

// Add sends p without waiting for an ack.
func (s *Sink) Add(_ context.Context, p core.Primitive) error {
	msgType, err := messageType(p.Kind())
	if err != nil {
		return err
	}
	data, err := marshalEnvelope(msgType, p)
	if err != nil {
		return err
	}
	if !s.conn.send(data) {
		return fmt.Errorf("send channel full, %s dropped", msgType)
	}

	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	return nil
}

// End sends end_scene and waits for the server ack.
func (s *Sink) End(ctx context.Context) error {
	s.mu.Lock()
	payload := streaming.EndScenePayload{Name: s.name, Count: s.count}
	s.mu.Unlock()

	data, err := marshalEnvelope(streaming.TypeEndScene, payload)
	if err != nil {
		return err
	}
	err = s.conn.sendAndWait(ctx, data, streaming.TypeEndScene, s.cfg.AckTimeout)

	// Clear cached state regardless of error.
	s.conn.mu.Lock()
	s.conn.cachedStartMsg = nil
	s.conn.mu.Unlock()

	return err
}
