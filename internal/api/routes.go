package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bondmonitor/internal/api/handlers"
	"bondmonitor/internal/api/middleware"
	"bondmonitor/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	Monitor       handlers.MonitorState
	Holdings      handlers.HoldingStore
	Notifications handlers.NotificationStore // nil при выключенной БД
	Hub           *websocket.Hub             // nil если рассылка отключена

	// bcrypt-хэш API токена; пустая строка отключает auth
	APITokenHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех API endpoints.
// Регистрирует handlers для каждого маршрута.
// Применяет middleware к группам маршрутов.
// Организует версионирование API (v1).
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /status - GET: состояние планировщика
//	├── /opportunities - GET: последние сигналы
//	├── /watchlist - GET: наблюдаемые пары
//	├── /holdings/
//	│   ├── GET / - открытые позиции и история
//	│   ├── POST / - открыть позицию
//	│   └── DELETE /{code} - закрыть позицию вручную
//	└── /notifications/
//	    ├── GET / - журнал уведомлений
//	    └── DELETE / - очистка старых записей
//
// /ws/
//
//	└── /stream - WebSocket для real-time обновлений
//
// /health - liveness проверка
// /metrics - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. Auth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	// Создание handlers с внедрением зависимостей
	var statusHandler *handlers.StatusHandler
	var opportunityHandler *handlers.OpportunityHandler
	var watchlistHandler *handlers.WatchlistHandler
	if deps != nil && deps.Monitor != nil {
		opportunityHandler = handlers.NewOpportunityHandler(deps.Monitor)
		watchlistHandler = handlers.NewWatchlistHandler(deps.Monitor)
		if deps.Holdings != nil {
			statusHandler = handlers.NewStatusHandler(deps.Monitor, deps.Holdings)
		}
	}

	var holdingHandler *handlers.HoldingHandler
	if deps != nil && deps.Holdings != nil {
		holdingHandler = handlers.NewHoldingHandler(deps.Holdings)
	}

	var notificationHandler *handlers.NotificationHandler
	if deps != nil && deps.Notifications != nil {
		notificationHandler = handlers.NewNotificationHandler(deps.Notifications)
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	if deps != nil {
		api.Use(middleware.Auth(deps.APITokenHash))
	}

	if statusHandler != nil {
		api.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")
	}

	if opportunityHandler != nil {
		api.HandleFunc("/opportunities", opportunityHandler.GetOpportunities).Methods("GET")
	}

	if watchlistHandler != nil {
		api.HandleFunc("/watchlist", watchlistHandler.GetWatchlist).Methods("GET")
	}

	if holdingHandler != nil {
		api.HandleFunc("/holdings", holdingHandler.GetHoldings).Methods("GET")
		api.HandleFunc("/holdings", holdingHandler.CreateHolding).Methods("POST")
		api.HandleFunc("/holdings/{code}", holdingHandler.CloseHolding).Methods("DELETE")
	}

	if notificationHandler != nil {
		api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
		api.HandleFunc("/notifications", notificationHandler.ClearNotifications).Methods("DELETE")
	}

	// WebSocket route
	if deps != nil && deps.Hub != nil {
		router.HandleFunc("/ws/stream", deps.Hub.ServeWS)
	}

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
