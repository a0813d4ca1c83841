package tools

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInsufficientInput is returned by handlers whose required input is
// missing from the message or profile.
var ErrInsufficientInput = errors.New("insufficient input")

// Status classifies a tool result.
type Status string

const (
	StatusOK                Status = "ok"
	StatusError             Status = "error"
	StatusInsufficientInput Status = "insufficient_input"
	StatusNotFound          Status = "not_found"
)

// Result is the outcome of one tool invocation.
type Result struct {
	Tool    Kind   `json:"tool"`
	Status  Status `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the tool produced a payload.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// String renders the result for a prompt.
func (r Result) String() string {
	switch r.Status {
	case StatusOK:
		if s, ok := r.Payload.(string); ok {
			return s
		}
		b, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Sprintf("%v", r.Payload)
		}
		return string(b)
	case StatusInsufficientInput:
		return "Insufficient input: " + r.Error
	case StatusNotFound:
		return fmt.Sprintf("Tool %s not found", r.Tool)
	default:
		return "Tool error: " + r.Error
	}
}

func insufficient(reason string) error {
	return fmt.Errorf("%w: %s", ErrInsufficientInput, reason)
}
