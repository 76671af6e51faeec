package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"athlete-clinical-history/internal/adapters/auth/jwtauth"
	"athlete-clinical-history/internal/adapters/cdss"
	pg "athlete-clinical-history/internal/adapters/storage/postgres"
	"athlete-clinical-history/internal/platform/config"
	"athlete-clinical-history/internal/platform/logger"
	"athlete-clinical-history/internal/router"
)

// @title Athlete Clinical History API
// @version 1.0
// @description Historias clínicas de atletas con links de consulta compartida.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres connection failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	opts := router.Options{
		DB:          db,
		FrontendURL: cfg.FrontendURL,
	}

	if cfg.JWTSecret != "" {
		jwtSvc := jwtauth.New(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
		opts.AuthVerifier = jwtSvc
		opts.TokenIssuer = jwtSvc
	} else {
		// Sin secret solo se permite modo dev (headers X-Debug-*).
		log.Warn("JWT_SECRET not set, running with debug auth headers", nil)
	}

	if cfg.CdssBaseURL != "" {
		analyzer, err := cdss.NewClient(cdss.Config{
			BaseURL: cfg.CdssBaseURL,
			APIKey:  cfg.CdssAPIKey,
		})
		if err != nil {
			log.Error("cdss client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.Analyzer = analyzer
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", map[string]any{"error": err.Error()})
		}
	}
}
