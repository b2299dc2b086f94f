package actionsService

import (
	"CallWaitingAI/internal/api/actions"
	"CallWaitingAI/internal/entity"
	contextPkg "CallWaitingAI/pkg/context"
	"CallWaitingAI/pkg/storage"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// handoffHistoryLimit bounds the excerpt attached to a handoff request so
// very long calls do not blow up the log row.
const handoffHistoryLimit = 10

// logConversation appends one call_logs row for the current turn. Pure
// side effect, no directives, safe on empty turns.
func (s *actionService) logConversation(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	if s.storage == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Debug("Storage not configured, turn not logged")
		return nil
	}

	language := turn.StringSlot("language")
	if language == "" {
		language = "en"
	}

	botResponse := ""
	if s.cache != nil {
		if cached, err := s.cache.GetLastReply(ctx, turn.SessionID); err == nil {
			botResponse = cached
		}
	}

	rec := storage.Record{
		"session_id":      turn.SessionID,
		"channel":         turn.Channel,
		"user_input":      turn.UserText,
		"detected_intent": turn.Intent,
		"confidence":      turn.Confidence,
		"bot_response":    botResponse,
		"language":        language,
		"timestamp":       time.Now().UTC(),
		"metadata": map[string]interface{}{
			"slots": turn.Slots,
		},
	}

	if _, err := s.storage.Insert(ctx, storage.TableCallLogs, rec); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
			"error":      err.Error(),
		}).Error("Failed to log conversation turn")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": turn.SessionID,
	}).Debug("Conversation turn logged")

	return nil
}

// humanHandoff flags the session for a human agent. The slot transition is
// unconditional: whatever happens to the log write or the operator alert,
// the conversation state moves to handoff-requested.
func (s *actionService) humanHandoff(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	handoffID := ""
	if s.utils != nil {
		handoffID, _ = s.utils.NewULIDFromTimestamp(time.Now())
	}

	history := turn.History
	if len(history) > handoffHistoryLimit {
		history = history[len(history)-handoffHistoryLimit:]
	}

	handoff := entity.Handoff{
		ID:          handoffID,
		SessionID:   turn.SessionID,
		Channel:     turn.Channel,
		Status:      entity.HandoffStatusRequested,
		LastIntent:  turn.Intent,
		RequestedAt: time.Now().UTC(),
		History:     history,
	}

	if s.storage != nil {
		rec := storage.Record{
			"session_id":      turn.SessionID,
			"channel":         turn.Channel,
			"user_input":      "HUMAN_HANDOFF_REQUEST",
			"detected_intent": "human_handoff_request",
			"confidence":      1.0,
			"bot_response":    "Connecting to human agent...",
			"timestamp":       time.Now().UTC(),
			"metadata": map[string]interface{}{
				"handoff": handoff,
			},
		}
		if _, err := s.storage.Insert(ctx, storage.TableCallLogs, rec); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": turn.SessionID,
				"error":      err.Error(),
			}).Error("Failed to log handoff request")
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": turn.SessionID,
				"handoff_id": handoffID,
			}).Info("Human handoff requested")
		}
	}

	s.notifyOperator(requestID, fmt.Sprintf(
		"Caller requested a human agent\nSession: %s\nChannel: %s\nLast intent: %s",
		turn.SessionID, turn.Channel, turn.Intent,
	))

	return []actions.Directive{
		actions.NewSlotSet("handoff_requested", true),
	}
}

// sendConfirmation records that a confirmation went out and, when mail is
// configured and the caller left an email, sends the booking mail.
func (s *actionService) sendConfirmation(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	bookingDate := turn.StringSlot("booking_date")
	bookingTime := turn.StringSlot("booking_time")

	if s.storage != nil {
		rec := storage.Record{
			"session_id":      turn.SessionID,
			"channel":         turn.Channel,
			"user_input":      "",
			"detected_intent": "confirmation_sent",
			"confidence":      1.0,
			"bot_response":    "",
			"timestamp":       time.Now().UTC(),
			"metadata": map[string]interface{}{
				"booking_date": bookingDate,
				"booking_time": bookingTime,
			},
		}
		if _, err := s.storage.Insert(ctx, storage.TableCallLogs, rec); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": turn.SessionID,
				"error":      err.Error(),
			}).Error("Failed to record confirmation event")
		}
	}

	email := turn.StringSlot("email")
	if s.mailer != nil && email != "" && bookingDate != "" {
		if err := s.mailer.SendBookingConfirmation(email, bookingDate, bookingTime); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": turn.SessionID,
				"error":      err.Error(),
			}).Warn("Failed to send confirmation email")
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"session_id":   turn.SessionID,
		"booking_date": bookingDate,
		"booking_time": bookingTime,
	}).Info("Confirmation sent for booking")

	return nil
}
