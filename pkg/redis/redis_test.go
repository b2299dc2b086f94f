package redis

import (
	"CallWaitingAI/pkg/outbound"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnconfiguredReturnsSentinel(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "")

	_, err := New()
	assert.ErrorIs(t, err, outbound.ErrNotConfigured)
}

func TestNew_ConfiguredReturnsClient(t *testing.T) {
	// An unreachable address still yields a client; the failed ping is
	// logged and cache calls surface their own errors per use.
	t.Setenv("REDIS_ADDRESS", "127.0.0.1:1")

	cache, err := New()
	require.NoError(t, err)
	assert.NotNil(t, cache)
}

func TestLastReplyKey(t *testing.T) {
	assert.Equal(t, "session:abc:last_reply", lastReplyKey("abc"))
}
