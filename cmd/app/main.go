package main

import (
	actionsService "CallWaitingAI/internal/api/actions/service"
	"CallWaitingAI/internal/config"
	"CallWaitingAI/pkg/log"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithUtils(),
		config.WithStorage(),
		config.WithTelegramNotifier(),
		config.WithWhatsappNotifier(),
		config.WithSpeechClient(),
		config.WithBackendClient(),
		config.WithSMTPMailer(),
		config.WithRedisCache(),
		config.WithS3Client(),
		config.WithAvailability(actionsService.NewAlwaysAvailable()),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Action server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")
}
