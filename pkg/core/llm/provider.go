package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for all LLM providers.
// Sampling settings are fixed when the provider is built, not per call.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string) (string, error)
	Name() string
}

// ErrorKind classifies why a generation call failed.
type ErrorKind string

const (
	KindRequest ErrorKind = "request" // could not build or send the request
	KindStatus  ErrorKind = "status"  // non-2xx response
	KindDecode  ErrorKind = "decode"  // body was not the expected shape
	KindEmpty   ErrorKind = "empty"   // no choices / no text
)

// APIError is returned by every provider on failure.
type APIError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status=%d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}
