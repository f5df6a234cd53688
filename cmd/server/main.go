package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"traffic-monitor/internal/config"
	"traffic-monitor/internal/db"
	httpapi "traffic-monitor/internal/http"
	"traffic-monitor/internal/logger"
	"traffic-monitor/internal/repository"
	"traffic-monitor/internal/service"
)

func main() {
	_ = godotenv.Load(".env")

	configPath := flag.String("config", os.Getenv("TRAFFIC_CONFIG"), "path to an optional YAML/JSON/TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := logger.New(config.LogConfig{Level: "info"})
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := db.NewConn(cfg.Database, log)
	if _, err := conn.Get(ctx); err != nil {
		log.Fatal().Err(err).Msg("store unavailable")
	}

	incidents := repository.NewIncidentRepository(conn)
	admins := repository.NewAdminRepository(conn)

	resolver := service.NewGeoResolver(incidents, cfg.Store.QueryTimeout, log)
	dashboard := service.NewDashboardService(incidents, cfg.Store.QueryTimeout, log)
	adminService := service.NewAdminService(admins, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost, log)

	limiter := httpapi.NewLoginLimiter(cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow)
	handler := httpapi.NewHandler(resolver, dashboard, adminService, conn, cfg.Auth.SuperuserKey, limiter, log)
	router := httpapi.NewRouter(cfg.Server, handler, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("traffic monitor listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := conn.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
}
