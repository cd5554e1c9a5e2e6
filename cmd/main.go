package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"billora/internal/caching"
	"billora/internal/config"
	"billora/internal/handlers"
	"billora/internal/jobs"
	"billora/internal/jobs/background"
	"billora/internal/middleware"
	"billora/internal/repositories"
	"billora/internal/services"
	"billora/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	automationCfg := config.LoadAutomationConfig(os.Getenv("AUTOMATION_CONFIG"))

	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Cache is optional; rule resolution falls back to Postgres.
	var cacheSvc caching.CacheService = caching.NoopCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := caching.NewRedisCache(cfg.RedisAddr)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rule cache disabled")
		} else {
			cacheSvc = redisCache
		}
	}

	var storageSvc services.StorageService
	if cfg.Minio.Endpoint != "" {
		storageSvc, err = services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		if err := storageSvc.EnsureBucketExists(context.Background(), cfg.Minio.PDFBucket); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure pdf bucket")
		}
	}

	// Production always delivers through Resend; elsewhere the
	// in-memory sandbox is the default and MAIL_SANDBOX=false opts into
	// real delivery.
	var sender services.Sender
	if !cfg.IsProduction() && cfg.Mail.Sandbox {
		log.Info().Msg("mail sandbox enabled, messages stay in memory")
		sender = services.NewSandboxSender()
	} else {
		sender = services.NewResendSender(services.ResendConfig{
			APIKey:      cfg.Mail.ResendAPIKey,
			FromEmail:   cfg.Mail.FromEmail,
			SendTimeout: automationCfg.DispatchDeadline(),
		})
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	templateRepo := repositories.NewEmailTemplateRepo(pool)
	automationRepo := repositories.NewAutomationRuleRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)
	clientSvc := services.NewClientService(clientRepo)
	templateSvc := services.NewEmailTemplateService(templateRepo, cacheSvc)
	ruleSvc := services.NewAutomationRuleService(automationRepo, templateRepo, cacheSvc)
	resolver := services.NewRuleResolver(automationRepo, cacheSvc)
	engine := services.NewAutomationEngine(invoiceRepo, notificationRepo, resolver, sender, cfg.Mail.FromEmail)

	dispatcher := jobs.NewDispatchWorker(engine, automationCfg.DispatchWorkers, automationCfg.QueueSize, automationCfg.DispatchDeadline())
	dispatcher.Start()
	defer dispatcher.Stop()

	invoiceSvc := services.NewInvoiceService(invoiceRepo, notificationRepo, storageSvc, dispatcher, cfg.Minio.PDFBucket)

	scheduler, err := background.NewJobScheduler(engine, automationCfg.SweepEvery())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	clientHandlers := handlers.NewClientHandlers(clientSvc)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc)
	templateHandlers := handlers.NewTemplateHandlers(templateSvc)
	automationHandlers := handlers.NewAutomationHandlers(ruleSvc)
	sweepHandlers := handlers.NewSweepHandlers(engine, cfg.SweepToken)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())

	e.GET("/health", handlers.HealthCheck)
	e.POST("/internal/sweep", sweepHandlers.RunSweep)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(cfg.JWTSecret)))
	protected.Use(middleware.UserContext())

	protected.GET("/clients", clientHandlers.ListClients)
	protected.POST("/clients", clientHandlers.CreateClient)
	protected.GET("/clients/:id", clientHandlers.GetClient)
	protected.PUT("/clients/:id", clientHandlers.UpdateClient)
	protected.DELETE("/clients/:id", clientHandlers.DeleteClient)

	protected.GET("/invoices", invoiceHandlers.ListInvoices)
	protected.POST("/invoices", invoiceHandlers.CreateInvoice)
	protected.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	protected.PUT("/invoices/:id", invoiceHandlers.UpdateInvoice)
	protected.PUT("/invoices/:id/status", invoiceHandlers.UpdateInvoiceStatus)
	protected.POST("/invoices/:id/generate-pdf", invoiceHandlers.GenerateInvoicePDF)
	protected.GET("/invoices/:id/notifications", invoiceHandlers.ListInvoiceNotifications)
	protected.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)

	protected.GET("/templates", templateHandlers.ListTemplates)
	protected.POST("/templates", templateHandlers.CreateTemplate)
	protected.GET("/templates/:id", templateHandlers.GetTemplate)
	protected.GET("/templates/:id/preview", templateHandlers.PreviewTemplate)
	protected.PUT("/templates/:id", templateHandlers.UpdateTemplate)
	protected.DELETE("/templates/:id", templateHandlers.DeleteTemplate)

	protected.GET("/automations", automationHandlers.ListRules)
	protected.POST("/automations", automationHandlers.CreateRule)
	protected.GET("/automations/:id", automationHandlers.GetRule)
	protected.PUT("/automations/:id", automationHandlers.UpdateRule)
	protected.DELETE("/automations/:id", automationHandlers.DeleteRule)

	go func() {
		log.Info().Str("version", version).Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
