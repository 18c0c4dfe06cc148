package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/database"
	"ai-diet-planner/internal/dietapi"
	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/importer"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/planner"
	"ai-diet-planner/internal/scheduler"
	"ai-diet-planner/internal/server"
	"ai-diet-planner/internal/shopping"
	"ai-diet-planner/internal/telegram"
)

const cleanupTime = "03:00"

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.Env)

	ctx := context.Background()

	// 2. Initialize Infrastructure
	textGen, closeGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	defer closeGen()
	if textGen == nil {
		logging.Warn("No LLM key configured, plan generation is disabled")
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	extractor := dietplan.NewExtractor()
	if cfg.IngredientTablePath != "" {
		table, err := dietplan.LoadIngredientTable(cfg.IngredientTablePath)
		if err != nil {
			log.Fatalf("Failed to load ingredient table: %v", err)
		}
		extractor = dietplan.NewExtractor(dietplan.WithIngredientTable(table))
	}

	planRepo := planner.NewPlanRepository(db.SQL)
	var mealPlanner *planner.Planner
	if textGen != nil {
		mealPlanner = planner.NewPlanner(textGen, planRepo)
	}
	var backend dietapi.Client
	if cfg.BackendEnabled() {
		backend = dietapi.NewClient(cfg)
	}

	// 3. Initialize Services
	application := app.NewApp(
		cfg,
		extractor,
		mealPlanner,
		planRepo,
		shopping.NewRepository(db.SQL),
		metrics.NewStore(db.SQL),
		importer.NewImporter(textGen),
		backend,
	)

	srv := server.NewServer(cfg, application)

	// 4. Initialize Telegram Bot
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, application)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		srv.MountWebhook("/webhook", bot.HandleWebhook)
	}

	// 5. Schedule retention jobs
	sched := scheduler.NewScheduler(application, cleanupTime)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// 6. Start Server with Graceful Shutdown
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	logging.Info("Server exiting")
}
