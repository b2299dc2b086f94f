package actionsHandler

import (
	"CallWaitingAI/internal/api/actions"
	"CallWaitingAI/internal/entity"
	contextPkg "CallWaitingAI/pkg/context"
	"CallWaitingAI/pkg/handlerUtil"
	"CallWaitingAI/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

// RunAction is the action-server webhook: one call per dialogue turn.
func (h *ActionsHandler) RunAction(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 35*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing action invocation")

	var req actions.RunActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	turn, err := buildTurnContext(req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "build_turn_context")
	}

	directives, err := h.actionService.Dispatch(c, req.NextAction, turn)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "dispatch_action")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"action":     req.NextAction,
			"directives": len(directives),
		}).Info("Action executed")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, actions.NewWebhookResponse(directives))
	}
}

func (h *ActionsHandler) ListActions(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"actions": h.actionService.Names(),
	})
}

// buildTurnContext flattens the tracker into the read-only view handlers
// consume. The sender id may arrive at the top level or on the tracker.
func buildTurnContext(req actions.RunActionRequest) (actions.TurnContext, error) {
	sessionID := req.SenderID
	if sessionID == "" {
		sessionID = req.Tracker.SenderID
	}
	if sessionID == "" {
		return actions.TurnContext{}, actions.ErrMissingSenderID
	}

	slots := req.Tracker.Slots
	if slots == nil {
		slots = map[string]interface{}{}
	}

	turn := actions.TurnContext{
		SessionID:  sessionID,
		Channel:    channelOf(req.Tracker),
		UserText:   req.Tracker.LatestMessage.Text,
		Intent:     req.Tracker.LatestMessage.Intent.Name,
		Confidence: req.Tracker.LatestMessage.Intent.Confidence,
		Slots:      slots,
		History:    historyOf(req.Tracker.Events),
	}

	return turn, nil
}

func channelOf(tracker actions.Tracker) string {
	if raw, ok := tracker.Slots["channel"]; ok {
		if channel, ok := raw.(string); ok && channel != "" {
			return channel
		}
	}
	if tracker.LatestInputChannel != "" {
		return tracker.LatestInputChannel
	}
	return "unknown"
}

// historyOf pairs user and bot tracker events into exchanges, in order.
func historyOf(events []actions.TrackerEvent) []entity.Exchange {
	var history []entity.Exchange

	for _, ev := range events {
		switch ev.Event {
		case "user":
			history = append(history, entity.Exchange{User: ev.Text})
		case "bot":
			if n := len(history); n > 0 && history[n-1].Bot == "" {
				history[n-1].Bot = ev.Text
			} else {
				history = append(history, entity.Exchange{Bot: ev.Text})
			}
		}
	}

	return history
}
