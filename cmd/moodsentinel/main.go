// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package main is the entry point for the moodsentinel CLI.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tviviano/mood-sentinel/internal/config"
	"github.com/tviviano/mood-sentinel/internal/handlers"
	"github.com/tviviano/mood-sentinel/internal/logger"
	"github.com/tviviano/mood-sentinel/internal/middleware"
	"github.com/tviviano/mood-sentinel/internal/mqtt"
	"github.com/tviviano/mood-sentinel/internal/notify"
	"github.com/tviviano/mood-sentinel/internal/rules"
	"github.com/tviviano/mood-sentinel/internal/source"
	"github.com/tviviano/mood-sentinel/internal/store"
	"github.com/tviviano/mood-sentinel/internal/ws"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

const defaultConfigPath = "config.json"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "serve":
		runServer(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("moodsentinel v0.1.0")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`moodsentinel - Threshold Alerting Engine for Scored Time Series

Usage:
  moodsentinel <command> [arguments]

Commands:
  serve     Start the alerting engine and API server
  help      Show this help message
  version   Show version

Use "moodsentinel serve -h" for more information about serving.`)
}

func printServeUsage() {
	fmt.Println(`moodsentinel serve - Start the alerting engine and API server

Usage:
  moodsentinel serve [options]

Options:
  --config <path>  Configuration file (default: config.json)

Environment Variables:
  SENTINEL_ADMIN_KEY     Admin key for mutating endpoints (required, min 20 chars)
  SENTINEL_HOST          Server host (default: 0.0.0.0)
  SENTINEL_PORT          Server port (default: 21180)
  SENTINEL_MODE          Server mode: debug or release (default: release)
  SENTINEL_DATA_DIR      Directory for persisted rules/alerts (default: ./data)
  SENTINEL_TICK_SECONDS  Evaluation interval in seconds (default: 30)
  SENTINEL_MQTT_BROKER   MQTT broker URL for entry ingest (empty disables MQTT)
  SENTINEL_MQTT_TOPIC    MQTT topic for entry ingest (default: sentinel/entries)
  SENTINEL_WEBHOOK_URL   Webhook URL for alert delivery (empty disables webhook)
  SENTINEL_LOG_LEVEL     Log level: trace, debug, info, warn, error (default: info)`)
}

func runServer(args []string) {
	configPath := defaultConfigPath
	if envPath := os.Getenv("SENTINEL_CONFIG"); envPath != "" {
		configPath = envPath
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printServeUsage()
			return
		case "--config":
			if i+1 < len(args) {
				i++
				configPath = args[i]
			}
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.LoadFromEnv()

	logger.Init(cfg.LogLevel, cfg.Server.Mode == "debug")
	log := logger.WithComponent("main")

	if cfg.Server.AdminKey == "" {
		log.Fatal().Msg("Admin key required: set SENTINEL_ADMIN_KEY or admin_key in config")
	}
	if len(cfg.Server.AdminKey) < 20 {
		log.Fatal().Msg("Admin key must be at least 20 characters")
	}

	if err := os.MkdirAll(cfg.Engine.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	// Persisted collections
	ruleStore, err := store.NewRuleStore(cfg.Engine.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load rule store")
	}
	alertStore, err := store.NewAlertStore(cfg.Engine.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load alert store")
	}
	engineSwitch, err := store.NewEngineSwitch(cfg.Engine.DataDir, cfg.Engine.StartEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load engine switch")
	}

	// Time-series source
	src, err := source.NewMemorySource(cfg.Engine.SourceCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create entry source")
	}

	// Alert sinks
	hub := ws.NewHub()

	var webhook *notify.Webhook
	if cfg.Webhook.URL != "" {
		webhook = notify.NewWebhook(notify.WebhookConfig{
			URL:     cfg.Webhook.URL,
			Timeout: time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
		})
		webhook.Start()
	}

	onAlert := func(alert model.TriggeredAlert) {
		hub.Broadcast(alert)
		if webhook != nil {
			webhook.Send(alert)
		}
	}

	// Evaluator
	evaluator := rules.NewEvaluator(ruleStore, alertStore, src, engineSwitch, cfg.TickInterval(), onAlert)
	evaluator.Start()

	// Optional MQTT ingest
	var subscriber *mqtt.Subscriber
	if cfg.MQTT.BrokerURL != "" {
		subscriber = mqtt.NewSubscriber(mqtt.SubscriberConfig{
			BrokerURL: cfg.MQTT.BrokerURL,
			Topic:     cfg.MQTT.Topic,
			ClientID:  cfg.MQTT.ClientID,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
		}, src)
		subscriber.Start()
	}

	// Setup Gin
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())

	// Health check and metrics (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize handlers
	ruleHandler := handlers.NewRuleHandler(ruleStore)
	alertHandler := handlers.NewAlertHandler(alertStore)
	entryHandler := handlers.NewEntryHandler(src)
	engineHandler := handlers.NewEngineHandler(engineSwitch, evaluator)
	wsHandler := handlers.NewWSHandler(hub)

	adminAuth := middleware.AdminAuth(cfg.Server.AdminKey)

	// API routes
	api := router.Group("/api")
	{
		entries := api.Group("/entries")
		{
			entries.POST("", entryHandler.Ingest)
			entries.GET("/newest", entryHandler.Newest) // Supports ?since=15m
			entries.GET("/stats", entryHandler.Stats)
		}

		ruleRoutes := api.Group("/rules")
		{
			ruleRoutes.GET("", ruleHandler.List)
			ruleRoutes.GET("/:id", ruleHandler.Get)
			ruleRoutes.POST("", adminAuth, ruleHandler.Create)
			ruleRoutes.PUT("/:id", adminAuth, ruleHandler.Update)
			ruleRoutes.DELETE("/:id", adminAuth, ruleHandler.Delete)
			ruleRoutes.PUT("/:id/enabled", adminAuth, ruleHandler.SetEnabled)
		}

		alertRoutes := api.Group("/alerts")
		{
			alertRoutes.GET("", alertHandler.List)
			alertRoutes.GET("/:id", alertHandler.Get)
			alertRoutes.POST("/:id/ack", adminAuth, alertHandler.Acknowledge)
			alertRoutes.DELETE("", adminAuth, alertHandler.Clear) // Supports ?acknowledged=true
		}

		engine := api.Group("/engine")
		{
			engine.GET("", engineHandler.Get)
			engine.PUT("", adminAuth, engineHandler.Set)
		}

		// Live alert feed
		api.GET("/ws/alerts", wsHandler.Alerts)
	}

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting moodsentinel server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop ingest first so the evaluator sees a quiescent series, then the
	// evaluator, then the sinks.
	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			log.Warn().Err(err).Msg("Error stopping MQTT subscriber")
		}
	}
	evaluator.Stop()
	hub.Stop()
	if webhook != nil {
		webhook.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
