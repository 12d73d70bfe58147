// Package events fans run progress out to server-sent event subscribers.
package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing          = "ping"
	TypeRunStarted    = "run_started"
	TypeRecordSettled = "record_settled"
	TypeRunFinished   = "run_finished"
	TypeRunFailed     = "run_failed"
)

// SchemaVersion is bumped when a payload changes shape.
const SchemaVersion = 1

// Event is the envelope every subscriber sees. Seq is assigned by the hub
// on publish and is 0 for events that never went through one.
type Event struct {
	Seq       uint64          `json:"seq,omitempty"`
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	RunID     string          `json:"run_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func New(reqID, runID, typ string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	return Event{
		Type:      typ,
		Version:   SchemaVersion,
		At:        time.Now().UTC(),
		RequestID: reqID,
		RunID:     runID,
		Data:      raw,
	}
}

// Encode renders e as a single JSON line.
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
