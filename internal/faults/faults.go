package faults

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failed request. It is the sole source of retry
// eligibility.
type Kind int

const (
	// Unknown failures are treated as transient up to the retry budget
	Unknown Kind = iota
	// Transient covers network faults and 5xx responses
	Transient
	// RateLimited means 429, retried with longer backoff
	RateLimited
	// AuthError means 401/403, fatal until the key is reconfigured
	AuthError
	// ClientError covers remaining 4xx, fatal
	ClientError
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case RateLimited:
		return "rate-limited"
	case AuthError:
		return "auth-error"
	case ClientError:
		return "client-error"
	default:
		return "unknown"
	}
}

// Error is a classified request failure. Status is 0 when the request
// never produced a response.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v: %v", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v (HTTP %v): %v", e.Kind, e.Status, e.Message)
}

// errorEnvelope is the structured error shape most vendors respond with
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify maps a response status and body onto a failure kind and a
// human readable message. Pass status 0 for network faults without any
// response.
func Classify(status int, body []byte) (Kind, string) {
	var kind Kind
	switch {
	case status == 0:
		kind = Transient
	case status == 401 || status == 403:
		kind = AuthError
	case status == 429:
		kind = RateLimited
	case status >= 500 && status <= 599:
		kind = Transient
	case status >= 400 && status <= 499:
		kind = ClientError
	default:
		kind = Unknown
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return kind, env.Error.Message
	}
	if msg := string(bytes.TrimSpace(body)); msg != "" {
		return kind, msg
	}
	return kind, fmt.Sprintf("HTTP %v", status)
}

// New creates a classified Error from a response status and body
func New(status int, body []byte) *Error {
	kind, msg := Classify(status, body)
	return &Error{Kind: kind, Status: status, Message: msg}
}

// NewNetwork creates a classified Error for a request which never got a
// response
func NewNetwork(err error) *Error {
	kind, msg := Classify(0, []byte(err.Error()))
	return &Error{Kind: kind, Message: msg}
}

// From recovers the classified error from err. Untyped errors come back
// as Unknown, which the retry engine treats as transient up to budget.
func From(err error) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	return &Error{Kind: Unknown, Message: err.Error()}
}
