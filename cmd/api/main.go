package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/composer"
	"github.com/laxmielectronics/site-api/internal/handlers"
	"github.com/laxmielectronics/site-api/internal/mailer"
	"github.com/laxmielectronics/site-api/internal/services"
	"github.com/laxmielectronics/site-api/pkg/httpclient"
	"github.com/laxmielectronics/site-api/pkg/logger"
	"github.com/laxmielectronics/site-api/pkg/recaptcha"
	"github.com/laxmielectronics/site-api/pkg/storage"
	"github.com/laxmielectronics/site-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Laxmi site API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Missing SMTP credentials are reported per send, not here
	if missing := cfg.SMTP.Missing(); cfg.Email.Provider == "smtp" && len(missing) > 0 {
		logger.Warn("SMTP is not fully configured; sends will fail until it is",
			zap.Strings("missing", missing))
	}

	transport, err := mailer.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize email transport", zap.Error(err))
	}

	store, err := storage.New(cfg.Attachments)
	if err != nil {
		logger.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}

	var captcha services.CaptchaVerifier
	if cfg.ReCAPTCHA.SecretKey != "" {
		captcha = recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, httpclient.NewStandardClient(10*time.Second)).
			WithMinScore(cfg.ReCAPTCHA.MinScore)
	} else {
		logger.Warn("RECAPTCHA_SECRET_KEY not set; typed forms are accepted without captcha")
	}

	// Initialize services
	relayService := services.NewRelayService(transport)
	formComposer := composer.New(composer.Config{
		AdminEmail:  cfg.Email.AdminEmail,
		CompanyName: cfg.Email.CompanyName,
	})
	formService := services.NewFormService(formComposer, relayService, store, captcha, cfg.Attachments.MaxBytes)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := newRouter(cfg, routeHandlers{
		health: handlers.NewHealthHandler(),
		email:  handlers.NewEmailHandler(relayService),
		forms:  handlers.NewFormHandler(formService),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Long enough for in-flight sends to hit their own timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Email.SendTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
