package outbound

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify_DeadlineExceededIsTimeout(t *testing.T) {
	err := Classify("op", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, err.Kind)
}

func TestClassify_NetTimeoutIsTimeout(t *testing.T) {
	err := Classify("op", fmt.Errorf("do: %w", timeoutErr{}))
	assert.Equal(t, KindTimeout, err.Kind)
}

func TestClassify_OtherIsConnection(t *testing.T) {
	err := Classify("op", errors.New("connection refused"))
	assert.Equal(t, KindConnection, err.Kind)
}

func TestNewProtocol_TruncatesBody(t *testing.T) {
	body := make([]byte, 1024)
	for i := range body {
		body[i] = 'x'
	}

	err := NewProtocol("op", 502, string(body))
	assert.Equal(t, KindProtocol, err.Kind)
	assert.Less(t, len(err.Error()), 512)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewProtocol("op", 400, "bad"))

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindProtocol, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = KindOf(nil)
	assert.False(t, ok)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewMalformed("op", cause)

	assert.Equal(t, KindMalformed, err.Kind)
	assert.True(t, errors.Is(err, cause))
}
