package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"bondmonitor/internal/api"
	"bondmonitor/internal/config"
	"bondmonitor/internal/models"
	"bondmonitor/internal/monitor"
	"bondmonitor/internal/provider"
	"bondmonitor/internal/repository"
	"bondmonitor/internal/watchlist"
	"bondmonitor/internal/websocket"
	"bondmonitor/pkg/retry"
	"bondmonitor/pkg/utils"
)

// holdingStore объединяет потребности ядра и API
type holdingStore interface {
	monitor.HoldingStore
	Closed(ctx context.Context, limit int) ([]models.ClosedHolding, error)
}

func main() {
	// .env удобен при локальном запуске; в бою переменные приходят из окружения
	_ = godotenv.Load()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Monitor.LogFile)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Список наблюдения загружается один раз; пустой список - фатальная ошибка
	watch, err := watchlist.Load(cfg.Monitor.WatchlistFile)
	if err != nil {
		logger.Fatalf("Failed to load watchlist: %v", err)
	}
	if len(watch) == 0 {
		logger.Fatalf("Watchlist %s is empty, nothing to monitor", cfg.Monitor.WatchlistFile)
	}
	logger.Infof("Watchlist loaded: %d pairs", len(watch))

	// Хранилище позиций: Postgres при включённой БД, иначе память процесса
	var store holdingStore
	var sink monitor.NotificationSink
	var notifications *repository.NotificationRepository

	if cfg.Database.Enabled {
		db, err := initDatabase(cfg)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Infof("Connected to database: %s", cfg.Database.DSNWithoutPassword())

		store = repository.NewHoldingRepository(db)
		notifications = repository.NewNotificationRepository(db)
		sink = notifications
	} else {
		logger.Info("Database disabled, holdings are kept in memory")
		store = repository.NewMemoryHoldingStore()
	}

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Клиент поставщика рыночных данных
	client := provider.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.RequestTimeout,
		cfg.Provider.RateLimit,
		cfg.Provider.RateBurst,
	)

	// Ядро мониторинга
	cache := monitor.NewPriceCache(cfg.Monitor.CacheShards)
	evaluator := monitor.NewEvaluator(cache, cfg.Monitor.PulseThreshold, cfg.Monitor.MinBondChange)
	scanner := monitor.NewScanner(client, evaluator, cfg.Monitor.MaxWorkers, logger)

	// Закрытия позиций уходят в движок после его создания
	var engine *monitor.Engine
	onClose := func(h models.Holding, exitPrice, pnl float64, reason string) {
		if engine != nil {
			engine.HandleHoldingClosed(h, exitPrice, pnl, reason)
		}
	}

	tracker := monitor.NewHoldingsTracker(
		store,
		client,
		cfg.Monitor.StopProfit,
		cfg.Monitor.StopLoss,
		retry.FixedConfig(cfg.Monitor.RetryTimes, cfg.Monitor.RetryDelay),
		onClose,
		logger,
	)

	engine, err = monitor.NewEngine(monitor.EngineOptions{
		Scanner:           scanner,
		Tracker:           tracker,
		Store:             store,
		Watch:             watch,
		CheckInterval:     cfg.Monitor.CheckInterval,
		SessionEndHour:    cfg.Monitor.SessionEndHour,
		OpportunityBuffer: cfg.Monitor.OpportunityBuffer,
		Broadcaster:       hub,
		Sink:              sink,
		Log:               logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		Monitor:      engine,
		Holdings:     store,
		Hub:          hub,
		APITokenHash: cfg.Security.APITokenHash,
	}
	if notifications != nil {
		deps.Notifications = notifications
	}

	router := api.SetupRoutes(deps)

	// HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Циклы мониторинга до отмены контекста
	if err := engine.Run(ctx); err != nil && err != context.Canceled {
		logger.Errorf("Engine stopped: %v", err)
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
