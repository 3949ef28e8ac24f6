package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clutchzone-api/internal/analytics"
	"clutchzone-api/internal/auth"
	"clutchzone-api/internal/config"
	"clutchzone-api/internal/database"
	"clutchzone-api/internal/handlers"
	"clutchzone-api/internal/logger"
	"clutchzone-api/internal/notify"
	"clutchzone-api/internal/realtime"
	"clutchzone-api/internal/routes"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	auth.Configure(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)
	notify.Setup(cfg)

	if err := database.InitDB(cfg.DatabasePath); err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	// Chat history lives in Redis when configured, otherwise in memory.
	var history realtime.ChatHistory
	if cfg.Redis.Addr != "" {
		history = realtime.NewRedisHistory(cfg.Redis.Addr)
		logger.Info("chat history backed by redis", zap.String("addr", cfg.Redis.Addr))
	}

	hub := realtime.NewHub(history, analytics.HubRecorder{}, logger.Log)
	handlers.SetHub(hub)

	store := database.TournamentStats{}
	ws := &handlers.WSHandler{Hub: hub, Store: store}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tournamentPusher := &realtime.TournamentStatusPusher{
		Hub:      hub,
		Store:    store,
		Interval: cfg.Realtime.TournamentPushInterval,
		Log:      logger.Log,
	}
	go tournamentPusher.Run(ctx)

	statsPusher := &realtime.SystemStatsPusher{
		Hub:      hub,
		Sampler:  realtime.SystemSampler{},
		Interval: cfg.Realtime.StatsPushInterval,
		Log:      logger.Log,
	}
	go statsPusher.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: routes.SetupRoutes(ws),
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	hub.CloseAll()
	logger.Info("server stopped")
}
