package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/shiebas/safa-connect-sub002/internal/config"
	"github.com/shiebas/safa-connect-sub002/internal/domain/admin"
	"github.com/shiebas/safa-connect-sub002/internal/domain/auth"
	"github.com/shiebas/safa-connect-sub002/internal/domain/competition"
	"github.com/shiebas/safa-connect-sub002/internal/domain/loyalty"
	"github.com/shiebas/safa-connect-sub002/internal/domain/reward"
	"github.com/shiebas/safa-connect-sub002/internal/domain/transfer"
	"github.com/shiebas/safa-connect-sub002/internal/domain/user"
	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/events"
	"github.com/shiebas/safa-connect-sub002/internal/middleware"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/database"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/jwt"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/logger"
	pkgresponse "github.com/shiebas/safa-connect-sub002/internal/pkg/response"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting SAFA Coin API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// R2 stays optional; statement exports are rejected without it.
	var r2Storage *storage.R2Storage
	if cfg.R2AccountID != "" {
		r2Storage, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
	}

	// ---------- WebSocket hub ----------
	hub := events.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	transferRepo := transfer.NewRepository(db)
	rewardRepo := reward.NewRepository(db)
	competitionRepo := competition.NewRepository(db)
	loyaltyRepo := loyalty.NewRepository(db)

	// ---------- Services ----------
	walletService := wallet.NewService(walletRepo, hub)
	transferService := transfer.NewService(db, transferRepo, walletService)
	rewardService := reward.NewService(db, rewardRepo, walletService)
	competitionService := competition.NewService(db, competitionRepo, walletService)
	loyaltyService := loyalty.NewService(db, loyaltyRepo, walletService, cfg.LoyaltyPointsPerCoin)
	authService := auth.NewService(userRepo, walletService, rewardService, jwtService, auth.OnboardingConfig{
		WelcomeBonus:      cfg.WelcomeBonus,
		FirstUseReward:    cfg.FirstUseReward,
		FirstUseRewardTTL: cfg.FirstUseRewardTTL,
	})
	exportService := admin.NewExportService(walletService, r2Storage)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	walletHandler := wallet.NewHandler(walletService)
	transferHandler := transfer.NewHandler(transferService)
	rewardHandler := reward.NewHandler(rewardService)
	competitionHandler := competition.NewHandler(competitionService)
	loyaltyHandler := loyalty.NewHandler(loyaltyService)
	adminHandler := admin.NewHandler(walletService, rewardService, transferService, exportService)
	eventsHandler := events.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	idempotencyMiddleware := middleware.Idempotency(redisClient, cfg.IdempotencyTTL)

	// Auth first so idempotency keys are scoped per user.
	protected := func(next http.Handler) http.Handler {
		return authMiddleware(idempotencyMiddleware(next))
	}

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(eventsHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]any{
			"status":      "ok",
			"version":     "1.0.0",
			"connections": hub.ConnectionCount(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/transfers", transferHandler.Routes(protected))
		r.Mount("/rewards", rewardHandler.Routes(protected))
		r.Mount("/competitions", competitionHandler.Routes(protected))
		r.Mount("/loyalty", loyaltyHandler.Routes(protected))

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())
			r.Use(idempotencyMiddleware)

			r.Mount("/competitions", competitionHandler.AdminRoutes())
			r.Mount("/", adminHandler.Routes())
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
