package actionsHandler

import (
	"CallWaitingAI/internal/api/actions"
	"CallWaitingAI/internal/middleware"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActionService struct {
	directives []actions.Directive
	err        error
	gotAction  string
	gotTurn    actions.TurnContext
}

func (f *fakeActionService) Dispatch(_ context.Context, actionName string, turn actions.TurnContext) ([]actions.Directive, error) {
	f.gotAction = actionName
	f.gotTurn = turn
	return f.directives, f.err
}

func (f *fakeActionService) Registered(_ string) bool { return true }

func (f *fakeActionService) Names() []string { return []string{"action_capture_lead"} }

func newTestApp(svc *fakeActionService) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	mw := middleware.New(logger)
	app.Use(mw.NewRequestIDMiddleware())

	h := New(logger, validator.New(), mw, svc)
	h.Start(app)

	return app
}

func webhookBody(t *testing.T, payload map[string]interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestRunAction_Success(t *testing.T) {
	svc := &fakeActionService{directives: []actions.Directive{
		actions.NewUtterance("Thank you! I've saved your information."),
		actions.NewSlotSet("handoff_requested", true),
	}}
	app := newTestApp(svc)

	body := webhookBody(t, map[string]interface{}{
		"next_action": "action_capture_lead",
		"sender_id":   "session-42",
		"tracker": map[string]interface{}{
			"sender_id": "session-42",
			"slots":     map[string]interface{}{"channel": "voice", "name": "Ada"},
			"latest_message": map[string]interface{}{
				"text":   "my name is Ada",
				"intent": map[string]interface{}{"name": "provide_name", "confidence": 0.91},
			},
		},
	})

	req := httptest.NewRequest(fiber.MethodPost, "/webhook", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var decoded actions.WebhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	require.Len(t, decoded.Responses, 1)
	assert.Equal(t, "Thank you! I've saved your information.", decoded.Responses[0].Text)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, "slot", decoded.Events[0].Event)

	assert.Equal(t, "action_capture_lead", svc.gotAction)
	assert.Equal(t, "session-42", svc.gotTurn.SessionID)
	assert.Equal(t, "voice", svc.gotTurn.Channel)
	assert.Equal(t, "my name is Ada", svc.gotTurn.UserText)
	assert.Equal(t, "provide_name", svc.gotTurn.Intent)
	assert.InDelta(t, 0.91, svc.gotTurn.Confidence, 1e-9)
}

func TestRunAction_UnknownAction(t *testing.T) {
	svc := &fakeActionService{err: actions.ErrUnknownAction}
	app := newTestApp(svc)

	body := webhookBody(t, map[string]interface{}{
		"next_action": "action_nope",
		"sender_id":   "session-42",
		"tracker":     map[string]interface{}{"sender_id": "session-42"},
	})

	req := httptest.NewRequest(fiber.MethodPost, "/webhook", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRunAction_MissingNextAction(t *testing.T) {
	svc := &fakeActionService{}
	app := newTestApp(svc)

	body := webhookBody(t, map[string]interface{}{
		"sender_id": "session-42",
	})

	req := httptest.NewRequest(fiber.MethodPost, "/webhook", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRunAction_MissingSenderID(t *testing.T) {
	svc := &fakeActionService{}
	app := newTestApp(svc)

	body := webhookBody(t, map[string]interface{}{
		"next_action": "action_capture_lead",
		"tracker":     map[string]interface{}{},
	})

	req := httptest.NewRequest(fiber.MethodPost, "/webhook", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "", svc.gotAction, "service must not be invoked without a sender id")
}

func TestListActions(t *testing.T) {
	svc := &fakeActionService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(fiber.MethodGet, "/actions", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var decoded struct {
		Actions []string `json:"actions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, []string{"action_capture_lead"}, decoded.Actions)
}

func TestBuildTurnContext_SenderFallsBackToTracker(t *testing.T) {
	turn, err := buildTurnContext(actions.RunActionRequest{
		NextAction: "action_log_conversation",
		Tracker:    actions.Tracker{SenderID: "tracker-7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tracker-7", turn.SessionID)
	assert.Equal(t, "unknown", turn.Channel)
	assert.NotNil(t, turn.Slots)
}

func TestBuildTurnContext_ChannelFromInputChannel(t *testing.T) {
	turn, err := buildTurnContext(actions.RunActionRequest{
		SenderID: "s",
		Tracker:  actions.Tracker{LatestInputChannel: "twilio"},
	})
	require.NoError(t, err)
	assert.Equal(t, "twilio", turn.Channel)
}

func TestHistoryOf_PairsExchanges(t *testing.T) {
	history := historyOf([]actions.TrackerEvent{
		{Event: "user", Text: "hi"},
		{Event: "bot", Text: "hello"},
		{Event: "action"},
		{Event: "user", Text: "book me in"},
		{Event: "bot", Text: "which day?"},
		{Event: "bot", Text: "any day works"},
	})

	require.Len(t, history, 3)
	assert.Equal(t, "hi", history[0].User)
	assert.Equal(t, "hello", history[0].Bot)
	assert.Equal(t, "book me in", history[1].User)
	assert.Equal(t, "which day?", history[1].Bot)
	assert.Equal(t, "", history[2].User)
	assert.Equal(t, "any day works", history[2].Bot)
}
