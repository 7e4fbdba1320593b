package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codemaster/internal/api"
	"codemaster/internal/app/service"
	"codemaster/internal/app/simulator"
	"codemaster/internal/common/security"
	"codemaster/internal/domain/repository"
	"codemaster/internal/platform/cache"
	"codemaster/internal/platform/config"
	"codemaster/internal/platform/database"

	"go.uber.org/zap"
)

func main() {
	config.Load()
	security.InitJWT()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect()
	defer database.Close()
	logger.Info("database connected")

	cache.Connect()
	defer cache.Close()
	logger.Info("redis connected")

	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	executionRepo := repository.NewPgExecutionRepository(database.DB)
	conversationRepo := repository.NewPgConversationRepository(database.DB)

	sim := simulator.New()

	authService := service.NewAuthService(userRepo, logger)
	executionService := service.NewExecutionService(sim, executionRepo, logger)
	leaderboardService := service.NewLeaderboardService(cache.RDB, submissionRepo, userRepo, logger)
	challengeService := service.NewChallengeService(challengeRepo, submissionRepo, sim, leaderboardService, logger)
	assistantService := service.NewAssistantService(conversationRepo, logger)

	router := api.NewRouter(authService, executionService, challengeService, assistantService, leaderboardService, logger)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}
