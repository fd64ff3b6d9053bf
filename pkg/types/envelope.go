package types

import (
	"encoding/json"
	"time"
)

// Realtime event type tags emitted by the server.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// Envelope is the tagged message exchanged over the realtime socket.
// Timestamp is set by the client on send; inbound values are trusted as-is.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}
