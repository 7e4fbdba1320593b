package api

import (
	"net/http"
	"time"

	"codemaster/internal/api/handler"
	"codemaster/internal/api/middleware"
	"codemaster/internal/app/service"
	"codemaster/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

func NewRouter(
	authService *service.AuthService,
	executionService *service.ExecutionService,
	challengeService *service.ChallengeService,
	assistantService *service.AssistantService,
	leaderboardService *service.LeaderboardService,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Puts claims from "Authorization: Bearer T" into the request context;
	// enforcement happens in middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	executionHandler := handler.NewExecutionHandler(executionService, logger)
	assistantHandler := handler.NewAssistantHandler(assistantService, logger)
	challengeHandler := handler.NewChallengeHandler(challengeService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	authHandler := handler.NewAuthHandler(authService)

	// Function-style endpoints kept at the root for client compatibility.
	r.Group(func(fn chi.Router) {
		fn.Use(middleware.Authenticator)
		fn.Post("/execute-code", executionHandler.Execute)
		fn.Post("/ai-assistant", assistantHandler.Chat)
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler.RegisterRoutes(v1)

		v1.Route("/challenges", challengeHandler.RegisterRoutes)

		v1.Get("/leaderboard", leaderboardHandler.Top)

		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.Authenticator)
			authed.Get("/submissions/me", challengeHandler.MySubmissions)
			authed.Get("/executions", executionHandler.History)
			authed.Route("/conversations", assistantHandler.RegisterConversationRoutes)
		})
	})

	return r
}
