package actionsHandler

import (
	actionsService "CallWaitingAI/internal/api/actions/service"
	"CallWaitingAI/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ActionsHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	actionService actionsService.IActionService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	as actionsService.IActionService,
) *ActionsHandler {
	return &ActionsHandler{
		log:           log,
		validator:     validator,
		middleware:    middleware,
		actionService: as,
	}
}

func (h *ActionsHandler) Start(srv fiber.Router) {
	srv.Post("/webhook", h.middleware.NewRateLimiter, h.RunAction)
	srv.Get("/actions", h.ListActions)
}
