// Package events fans pass lifecycle notifications out to dashboard streams.
package events

import (
	"encoding/json"
	"time"
)

const (
	PassStarted  = "pass_started"
	PassFinished = "pass_finished"
	DataCleared  = "data_cleared"
	Ping         = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds an event envelope; data is marshalled as-is and dropped if it cannot be.
func New(reqID, typ string, data any) Event {
	e := Event{Type: typ, Version: 1, At: time.Now().UTC(), RequestID: reqID}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

// Encode returns the JSON form written on an SSE data line.
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
