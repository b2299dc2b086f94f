package actionsService

import (
	"CallWaitingAI/internal/api/actions"
	"CallWaitingAI/pkg/backend"
	contextPkg "CallWaitingAI/pkg/context"
	"CallWaitingAI/pkg/minimax"
	redisPkg "CallWaitingAI/pkg/redis"
	s3Pkg "CallWaitingAI/pkg/s3"
	smtpPkg "CallWaitingAI/pkg/smtp"
	"CallWaitingAI/pkg/storage"
	"CallWaitingAI/pkg/telegram"
	"CallWaitingAI/pkg/utils"
	"CallWaitingAI/pkg/whatsapp"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const dispatchTimeout = 30 * time.Second

type IActionService interface {
	Dispatch(ctx context.Context, actionName string, turn actions.TurnContext) ([]actions.Directive, error)
	Registered(actionName string) bool
	Names() []string
}

// AvailabilitySource answers whether a requested booking slot is open.
// The in-process default always says yes; a calendar-backed source can be
// swapped in without touching the handlers.
type AvailabilitySource interface {
	IsAvailable(ctx context.Context, bookingDate, bookingTime string) bool
}

type alwaysAvailable struct{}

func (alwaysAvailable) IsAvailable(_ context.Context, _, _ string) bool { return true }

func NewAlwaysAvailable() AvailabilitySource { return alwaysAvailable{} }

type actionHandler func(ctx context.Context, turn actions.TurnContext) []actions.Directive

type actionService struct {
	log          *logrus.Logger
	storage      storage.IStorage
	telegram     telegram.ITelegram
	whatsapp     whatsapp.IWhatsappSender
	speech       minimax.ISpeech
	backend      backend.IBackend
	mailer       smtpPkg.ItfSmtp
	cache        redisPkg.IRedis
	s3           s3Pkg.ItfS3
	utils        utils.IUtils
	availability AvailabilitySource

	registry map[string]actionHandler
}

func NewActionService(
	log *logrus.Logger,
	store storage.IStorage,
	tg telegram.ITelegram,
	wa whatsapp.IWhatsappSender,
	speech minimax.ISpeech,
	be backend.IBackend,
	mailer smtpPkg.ItfSmtp,
	cache redisPkg.IRedis,
	s3 s3Pkg.ItfS3,
	utils utils.IUtils,
	availability AvailabilitySource,
) IActionService {
	if availability == nil {
		availability = alwaysAvailable{}
	}

	s := &actionService{
		log:          log,
		storage:      store,
		telegram:     tg,
		whatsapp:     wa,
		speech:       speech,
		backend:      be,
		mailer:       mailer,
		cache:        cache,
		s3:           s3,
		utils:        utils,
		availability: availability,
	}

	s.registry = map[string]actionHandler{
		"action_capture_lead":       s.captureLead,
		"action_store_booking":      s.storeBooking,
		"action_log_conversation":   s.logConversation,
		"action_human_handoff":      s.humanHandoff,
		"action_get_service_info":   s.getServiceInfo,
		"action_check_availability": s.checkAvailability,
		"action_send_confirmation":  s.sendConfirmation,
		"action_send_to_minimax":    s.sendToMinimax,
		"action_log_to_backend":     s.logToBackend,
	}

	return s
}

func (s *actionService) Registered(actionName string) bool {
	_, ok := s.registry[actionName]
	return ok
}

func (s *actionService) Names() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one action handler under a single bounded timeout. A
// handler failure of any kind is contained here: the caller gets an empty
// directive list, never an error that would end the conversation.
func (s *actionService) Dispatch(ctx context.Context, actionName string, turn actions.TurnContext) ([]actions.Directive, error) {
	requestID := contextPkg.GetRequestID(ctx)

	handler, ok := s.registry[actionName]
	if !ok {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"action":     actionName,
		}).Warn("Unknown action requested")
		return nil, actions.ErrUnknownAction
	}

	c, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	directives := s.runContained(c, handler, actionName, turn)

	s.cacheLastReply(c, turn.SessionID, directives)

	return directives, nil
}

func (s *actionService) runContained(ctx context.Context, handler actionHandler, actionName string, turn actions.TurnContext) (directives []actions.Directive) {
	requestID := contextPkg.GetRequestID(ctx)

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"action":     actionName,
				"session_id": turn.SessionID,
				"panic":      r,
			}).Error("Action handler panicked")
			directives = nil
		}
	}()

	return handler(ctx, turn)
}

// cacheLastReply remembers the most recent spoken reply per session so
// the conversation logger can attribute the bot side of the next turn.
func (s *actionService) cacheLastReply(ctx context.Context, sessionID string, directives []actions.Directive) {
	if s.cache == nil || sessionID == "" {
		return
	}

	for _, d := range directives {
		if d.Kind != actions.DirectiveUtterance && d.Kind != actions.DirectiveCustom {
			continue
		}
		if d.Text == "" {
			continue
		}
		if err := s.cache.SetLastReply(ctx, sessionID, d.Text); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Failed to cache last reply")
		}
		return
	}
}

// notifyOperator pushes an alert over the configured channels. Telegram is
// the primary channel; WhatsApp is attempted as well when a sender is
// connected. Fire-and-forget: failures are logged and dropped.
func (s *actionService) notifyOperator(requestID, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ctx = contextPkg.WithRequestID(ctx, requestID)

		delivered := false

		if s.telegram != nil {
			if err := s.telegram.Push(ctx, "", message); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Telegram operator alert failed")
			} else {
				delivered = true
			}
		}

		if s.whatsapp != nil && s.whatsapp.IsConnected() {
			if err := s.whatsapp.Push(ctx, "", message); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("WhatsApp operator alert failed")
			} else {
				delivered = true
			}
		}

		if !delivered {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Debug("No notifier channel delivered the operator alert")
		}
	}()
}
