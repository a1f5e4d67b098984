package types

import (
	"time"
)

// Bus actions published by the terminal registry entries.
const (
	ActionRequestNotFound = "router:request:404"
	ActionRequestErrored  = "router:request:500"
)

type ActionBroker interface {
	Publish(action string, payload interface{}) error
	Subscribe(action string, handler ActionHandler) error
	Unsubscribe(action string) error
	Start() error
	Stop() error
	IsRunning() bool
}

type ActionHandler func(payload *ActionMessage) error

type ActionBrokerCreator func(config interface{}) (ActionBroker, error)

type ActionMessage struct {
	Action    string            `json:"action"`
	Payload   interface{}       `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata"`
	MessageID string            `json:"message_id"`
}

// RequestEvent is the payload carried by the terminal actions. Error is empty
// for unmatched-request events.
type RequestEvent struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
