package config

import (
	actionsHandler "CallWaitingAI/internal/api/actions/handler"
	actionsService "CallWaitingAI/internal/api/actions/service"
	"CallWaitingAI/internal/middleware"
	"CallWaitingAI/pkg/backend"
	"CallWaitingAI/pkg/minimax"
	"CallWaitingAI/pkg/outbound"
	redisPkg "CallWaitingAI/pkg/redis"
	s3Pkg "CallWaitingAI/pkg/s3"
	smtpPkg "CallWaitingAI/pkg/smtp"
	"CallWaitingAI/pkg/storage"
	"CallWaitingAI/pkg/telegram"
	"CallWaitingAI/pkg/utils"
	"CallWaitingAI/pkg/whatsapp"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	storageClient  storage.IStorage
	telegramClient telegram.ITelegram
	whatsappClient whatsapp.IWhatsappSender
	speechClient   minimax.ISpeech
	backendClient  backend.IBackend
	smtpMailer     smtpPkg.ItfSmtp
	redisCache     redisPkg.IRedis
	s3Client       s3Pkg.ItfS3
	availability   actionsService.AvailabilitySource
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithStorage wires the lead/call-log store. Missing credentials degrade
// persistence to a logged no-op; any other error aborts startup.
func WithStorage() ServerOption {
	return func(s *Server) error {
		client, err := storage.New(s.log)
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("Storage not configured, persistence actions disabled")
				return nil
			}
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		s.storageClient = client
		return nil
	}
}

func WithTelegramNotifier() ServerOption {
	return func(s *Server) error {
		client, err := telegram.New(s.log)
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("Telegram not configured, operator alerts disabled")
				return nil
			}
			return fmt.Errorf("failed to create Telegram client: %w", err)
		}
		s.telegramClient = client
		return nil
	}
}

func WithWhatsappNotifier() ServerOption {
	return func(s *Server) error {
		client, err := whatsapp.New()
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("WhatsApp not configured, secondary alerts disabled")
				return nil
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithSpeechClient() ServerOption {
	return func(s *Server) error {
		client, err := minimax.New(s.log)
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("Speech service not configured, synthesis disabled")
				return nil
			}
			return fmt.Errorf("failed to create speech client: %w", err)
		}
		s.speechClient = client
		return nil
	}
}

func WithBackendClient() ServerOption {
	return func(s *Server) error {
		client, err := backend.New(s.log)
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("Backend not configured, lead forwarding disabled")
				return nil
			}
			return fmt.Errorf("failed to create backend client: %w", err)
		}
		s.backendClient = client
		return nil
	}
}

func WithSMTPMailer() ServerOption {
	return func(s *Server) error {
		mailer, err := smtpPkg.New()
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("SMTP not configured, confirmation mail disabled")
				return nil
			}
			return fmt.Errorf("failed to create SMTP mailer: %w", err)
		}
		s.smtpMailer = mailer
		return nil
	}
}

func WithRedisCache() ServerOption {
	return func(s *Server) error {
		cache, err := redisPkg.New()
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("Redis not configured, last-reply cache disabled")
				return nil
			}
			return fmt.Errorf("failed to create Redis cache: %w", err)
		}
		s.redisCache = cache
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3Pkg.New()
		if err != nil {
			if errors.Is(err, outbound.ErrNotConfigured) {
				s.log.Warn("S3 not configured, audio mirroring disabled")
				return nil
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithAvailability(source actionsService.AvailabilitySource) ServerOption {
	return func(s *Server) error {
		s.availability = source
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Actions Domain
	actionServices := actionsService.NewActionService(
		s.log,
		s.storageClient,
		s.telegramClient,
		s.whatsappClient,
		s.speechClient,
		s.backendClient,
		s.smtpMailer,
		s.redisCache,
		s.s3Client,
		s.utils,
		s.availability,
	)
	actionHandlers := actionsHandler.New(s.log, s.validator, s.middleware, actionServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, actionHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "5055"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.whatsappClient != nil {
			s.whatsappClient.Disconnect()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status": "ok",
		})
	})
}
