package actionsService

import (
	"CallWaitingAI/internal/api/actions"
	"CallWaitingAI/pkg/backend"
	contextPkg "CallWaitingAI/pkg/context"
	"CallWaitingAI/pkg/formatter"
	"CallWaitingAI/pkg/outbound"
	"CallWaitingAI/pkg/storage"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const leadSource = "rasa_voice_agent"

// captureLead stores the caller's details as a lead keyed by session id.
// The reply never exposes a storage failure; the caller only ever hears a
// variant of "we've got your details".
func (s *actionService) captureLead(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	rec := storage.Record{
		"session_id":       turn.SessionID,
		"name":             turn.StringSlot("name"),
		"phone_number":     turn.StringSlot("phone_number"),
		"email":            turn.StringSlot("email"),
		"service_interest": turn.StringSlot("service_type"),
		"status":           "new",
		"source_channel":   turn.Channel,
		"created_at":       time.Now().UTC(),
		"metadata": map[string]interface{}{
			"intent":     turn.Intent,
			"confidence": turn.Confidence,
		},
	}
	// booking_date is a date column; an empty string would be rejected, so
	// the key is omitted entirely until the caller names a date.
	if bookingDate := turn.StringSlot("booking_date"); bookingDate != "" {
		rec["booking_date"] = bookingDate
	}

	if s.storage == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Warn("Storage not configured, lead not saved")
		return []actions.Directive{
			actions.NewUtterance(formatter.Format("Thank you for your interest! We'll get back to you soon.")),
		}
	}

	if _, err := s.storage.Upsert(ctx, storage.TableLeads, "session_id", rec); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
			"error":      err.Error(),
		}).Error("Failed to capture lead")
		return []actions.Directive{
			actions.NewUtterance(formatter.Format("I've noted your information. We'll be in touch shortly.")),
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": turn.SessionID,
	}).Info("Lead captured")

	s.notifyOperator(requestID, fmt.Sprintf(
		"New lead captured\nName: %s\nPhone: %s\nService: %s\nSession: %s",
		turn.StringSlot("name"), turn.StringSlot("phone_number"), turn.StringSlot("service_type"), turn.SessionID,
	))

	return []actions.Directive{
		actions.NewUtterance(formatter.Format("Thank you! I've saved your information. Someone from our team will contact you soon.")),
	}
}

// storeBooking patches the existing lead with booking details, falling back
// to a fresh insert when this session has no lead yet. Storage errors are
// swallowed; the booking confirmation is a separate action.
func (s *actionService) storeBooking(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	bookingDate := turn.StringSlot("booking_date")
	bookingTime := turn.StringSlot("booking_time")

	if bookingDate == "" {
		return []actions.Directive{
			actions.NewUtterance(formatter.Format("I need a date to complete the booking. When would you like to book?")),
		}
	}

	if s.storage == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Warn("Storage not configured, booking not saved")
		return nil
	}

	patch := storage.Record{
		"booking_date": bookingDate,
		"status":       "contacted",
	}
	if bookingTime != "" {
		patch["booking_time"] = bookingTime
	}

	affected, err := s.storage.UpdateWhere(ctx, storage.TableLeads, map[string]interface{}{"session_id": turn.SessionID}, patch)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
			"error":      err.Error(),
		}).Error("Failed to store booking")
		return nil
	}

	if affected == 0 {
		rec := storage.Record{
			"session_id":       turn.SessionID,
			"name":             turn.StringSlot("name"),
			"phone_number":     turn.StringSlot("phone_number"),
			"service_interest": turn.StringSlot("service_type"),
			"booking_date":     bookingDate,
			"status":           "contacted",
			"created_at":       time.Now().UTC(),
		}
		if bookingTime != "" {
			rec["booking_time"] = bookingTime
		}
		if _, err := s.storage.Insert(ctx, storage.TableLeads, rec); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": turn.SessionID,
				"error":      err.Error(),
			}).Error("Failed to insert booking lead")
			return nil
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"session_id":   turn.SessionID,
		"booking_date": bookingDate,
		"booking_time": bookingTime,
	}).Info("Booking stored")

	return nil
}

// logToBackend forwards a completed lead to the CallWaitingAI backend. It
// only fires when name, business and phone are all present.
func (s *actionService) logToBackend(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	name := turn.StringSlot("name")
	business := turn.StringSlot("business")
	phone := turn.StringSlot("phone_number")

	if name == "" || business == "" || phone == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Debug("Lead incomplete, not forwarding to backend")
		return nil
	}

	if s.backend == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Warn("Backend not configured, lead not forwarded")
		return nil
	}

	err := s.backend.PostLead(ctx, backend.LeadNotification{
		Name:     name,
		Business: business,
		Phone:    phone,
		Source:   leadSource,
	})
	if err == nil {
		return nil
	}

	fields := logrus.Fields{
		"request_id": requestID,
		"session_id": turn.SessionID,
		"error":      err.Error(),
	}

	switch kind, _ := outbound.KindOf(err); kind {
	case outbound.KindTimeout:
		s.log.WithFields(fields).Error("Backend lead push timed out")
	case outbound.KindConnection:
		s.log.WithFields(fields).Error("Backend unreachable for lead push")
	case outbound.KindProtocol:
		s.log.WithFields(fields).Error("Backend rejected lead push")
	default:
		s.log.WithFields(fields).Error("Backend lead push failed")
	}

	return nil
}
