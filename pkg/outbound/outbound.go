package outbound

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNotConfigured marks an adapter whose credentials are absent. Callers
// treat it as a stable state, not a transient failure.
var ErrNotConfigured = errors.New("adapter not configured")

type Kind int

const (
	KindTimeout Kind = iota
	KindConnection
	KindProtocol
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is the single failure shape every outbound adapter returns.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps a transport-level error from http.Client.Do into a Kind.
func Classify(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}

	return &Error{Kind: KindConnection, Op: op, Err: err}
}

func NewProtocol(op string, status int, body string) *Error {
	if len(body) > 256 {
		body = body[:256]
	}
	return &Error{
		Kind: KindProtocol,
		Op:   op,
		Err:  fmt.Errorf("unexpected status %d: %s", status, body),
	}
}

func NewMalformed(op string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}

// KindOf reports the failure kind of err when it carries one.
func KindOf(err error) (Kind, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return 0, false
}
