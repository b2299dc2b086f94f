package actions

import (
	"strings"

	"CallWaitingAI/internal/entity"
)

// RunActionRequest is the payload the dialogue manager posts on /webhook,
// one call per turn.
type RunActionRequest struct {
	NextAction string                 `json:"next_action" validate:"required"`
	SenderID   string                 `json:"sender_id"`
	Tracker    Tracker                `json:"tracker"`
	Domain     map[string]interface{} `json:"domain,omitempty"`
	Version    string                 `json:"version,omitempty"`
}

type Tracker struct {
	SenderID           string                 `json:"sender_id"`
	Slots              map[string]interface{} `json:"slots"`
	LatestMessage      LatestMessage          `json:"latest_message"`
	LatestInputChannel string                 `json:"latest_input_channel"`
	Events             []TrackerEvent         `json:"events"`
}

type LatestMessage struct {
	Text   string `json:"text"`
	Intent Intent `json:"intent"`
}

type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type TrackerEvent struct {
	Event     string  `json:"event"`
	Text      string  `json:"text,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// TurnContext is the read-only view of one turn handed to action handlers.
// It is built once per invocation and never shared across calls.
type TurnContext struct {
	SessionID  string
	Channel    string
	UserText   string
	Intent     string
	Confidence float64
	Slots      map[string]interface{}
	History    []entity.Exchange
}

// StringSlot returns the named slot as a trimmed string, or "" when the
// slot is unset or not textual.
func (t TurnContext) StringSlot(name string) string {
	raw, ok := t.Slots[name]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

type DirectiveKind string

const (
	DirectiveUtterance DirectiveKind = "utterance"
	DirectiveSlotSet   DirectiveKind = "slot_set"
	DirectiveCustom    DirectiveKind = "custom"
)

// Directive is one instruction back to the dialogue manager: say something,
// set a slot, or push a channel-specific custom payload.
type Directive struct {
	Kind      DirectiveKind
	Text      string
	SlotName  string
	SlotValue interface{}
	Custom    map[string]interface{}
}

func NewUtterance(text string) Directive {
	return Directive{Kind: DirectiveUtterance, Text: text}
}

func NewSlotSet(name string, value interface{}) Directive {
	return Directive{Kind: DirectiveSlotSet, SlotName: name, SlotValue: value}
}

func NewCustom(text string, payload map[string]interface{}) Directive {
	return Directive{Kind: DirectiveCustom, Text: text, Custom: payload}
}

// Wire shapes for the webhook reply, matching what the dialogue manager
// expects back from an action server.
type SlotEvent struct {
	Event string      `json:"event"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

type ResponseMessage struct {
	Text   string                 `json:"text,omitempty"`
	Custom map[string]interface{} `json:"custom,omitempty"`
}

type WebhookResponse struct {
	Events    []SlotEvent       `json:"events"`
	Responses []ResponseMessage `json:"responses"`
}

// NewWebhookResponse flattens directives into the wire shape, keeping
// directive order within each of the two lists.
func NewWebhookResponse(directives []Directive) WebhookResponse {
	resp := WebhookResponse{
		Events:    make([]SlotEvent, 0, len(directives)),
		Responses: make([]ResponseMessage, 0, len(directives)),
	}

	for _, d := range directives {
		switch d.Kind {
		case DirectiveUtterance:
			resp.Responses = append(resp.Responses, ResponseMessage{Text: d.Text})
		case DirectiveSlotSet:
			resp.Events = append(resp.Events, SlotEvent{Event: "slot", Name: d.SlotName, Value: d.SlotValue})
		case DirectiveCustom:
			resp.Responses = append(resp.Responses, ResponseMessage{Text: d.Text, Custom: d.Custom})
		}
	}

	return resp
}
