package api

import "encoding/json"

type (
	// WebSocketEvent is an engine event sent to WebSocket clients
	WebSocketEvent struct {
		Type      EventType       `json:"type"`
		Data      json.RawMessage `json:"data"`
		Timestamp int64           `json:"timestamp"`
		Sequence  int64           `json:"sequence"`
	}

	// SubscribeRequest is sent by clients to filter the events they receive
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// ClientSubscription configures which events a WebSocket client
	// receives. An empty list receives every event
	ClientSubscription struct {
		EventTypes []EventType `json:"event_types,omitempty"`
	}

	// SubscribedResult is sent to clients with the current session on
	// subscribe
	SubscribedResult struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	// CommandError is sent to a client whose command could not be applied
	CommandError struct {
		Type    string `json:"type"`
		Command string `json:"command"`
		Error   string `json:"error"`
	}
)
