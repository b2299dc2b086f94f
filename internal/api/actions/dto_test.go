package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookResponse_MapsDirectives(t *testing.T) {
	directives := []Directive{
		NewSlotSet("handoff_requested", true),
		NewUtterance("Hello there."),
		NewCustom("", map[string]interface{}{"audio_url": "https://cdn/x.mp3"}),
	}

	resp := NewWebhookResponse(directives)

	require.Len(t, resp.Events, 1)
	assert.Equal(t, "slot", resp.Events[0].Event)
	assert.Equal(t, "handoff_requested", resp.Events[0].Name)
	assert.Equal(t, true, resp.Events[0].Value)

	require.Len(t, resp.Responses, 2)
	assert.Equal(t, "Hello there.", resp.Responses[0].Text)
	assert.Equal(t, "https://cdn/x.mp3", resp.Responses[1].Custom["audio_url"])
}

func TestNewWebhookResponse_EmptyIsNotNil(t *testing.T) {
	resp := NewWebhookResponse(nil)
	assert.NotNil(t, resp.Events)
	assert.NotNil(t, resp.Responses)
	assert.Empty(t, resp.Events)
	assert.Empty(t, resp.Responses)
}

func TestTurnContext_StringSlot(t *testing.T) {
	turn := TurnContext{Slots: map[string]interface{}{
		"name":    "  Ada  ",
		"age":     42,
		"nothing": nil,
	}}

	assert.Equal(t, "Ada", turn.StringSlot("name"))
	assert.Equal(t, "", turn.StringSlot("age"))
	assert.Equal(t, "", turn.StringSlot("nothing"))
	assert.Equal(t, "", turn.StringSlot("missing"))
}
