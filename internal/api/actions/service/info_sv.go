package actionsService

import (
	"CallWaitingAI/internal/api/actions"
	contextPkg "CallWaitingAI/pkg/context"
	"CallWaitingAI/pkg/formatter"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var serviceDescriptions = map[string]string{
	"call management":  "Our AI-powered call management system handles incoming calls intelligently, routes them appropriately, and ensures no call goes unanswered.",
	"booking system":   "Our automated booking system allows customers to schedule appointments 24/7, with automatic reminders and calendar integration.",
	"customer support": "We provide 24/7 AI customer support that can handle common inquiries, escalate complex issues, and maintain consistent service quality.",
	"lead capture":     "Our lead capture system automatically collects and qualifies leads from calls and conversations, ensuring you never miss a potential customer.",
}

// getServiceInfo answers from the fixed service catalogue. Lookup is
// case-insensitive on the service_type slot.
func (s *actionService) getServiceInfo(_ context.Context, turn actions.TurnContext) []actions.Directive {
	serviceType := turn.StringSlot("service_type")

	if serviceType == "" {
		return []actions.Directive{
			actions.NewUtterance(formatter.Format("Which specific service would you like to learn more about?")),
		}
	}

	info, ok := serviceDescriptions[strings.ToLower(serviceType)]
	if !ok {
		return []actions.Directive{
			actions.NewUtterance(formatter.Format(fmt.Sprintf(
				"For detailed information about %s, I can connect you with our team.", serviceType,
			))),
		}
	}

	return []actions.Directive{
		actions.NewUtterance(formatter.Format(info)),
	}
}

// checkAvailability asks the availability source about the requested slot.
// An unavailable slot clears both booking slots and re-prompts the caller.
func (s *actionService) checkAvailability(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	bookingDate := turn.StringSlot("booking_date")
	bookingTime := turn.StringSlot("booking_time")

	if bookingDate == "" {
		return nil
	}

	if s.availability.IsAvailable(ctx, bookingDate, bookingTime) {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"session_id":   turn.SessionID,
			"booking_date": bookingDate,
			"booking_time": bookingTime,
		}).Debug("Requested slot available")
		return nil
	}

	return []actions.Directive{
		actions.NewUtterance(formatter.Format(fmt.Sprintf(
			"Unfortunately, %s at %s is not available. Would you like to choose another time?", bookingDate, bookingTime,
		))),
		actions.NewSlotSet("booking_date", nil),
		actions.NewSlotSet("booking_time", nil),
	}
}
