package handlers

import (
	"net/http"

	"bondmonitor/internal/models"
	"bondmonitor/internal/monitor"
)

// MonitorState - доступ к состоянию планировщика для API
type MonitorState interface {
	Status() monitor.EngineStatus
	Recent() []models.Opportunity
	Watchlist() []models.WatchedPair
}

// StatusHandler отвечает за состояние монитора
//
// Endpoints:
// - GET /api/v1/status - состояние планировщика и счётчики
type StatusHandler struct {
	state    MonitorState
	holdings HoldingStore
}

// NewStatusHandler создает новый StatusHandler с внедрением зависимостей
func NewStatusHandler(state MonitorState, holdings HoldingStore) *StatusHandler {
	return &StatusHandler{state: state, holdings: holdings}
}

// StatusResponse представляет ответ состояния монитора
type StatusResponse struct {
	monitor.EngineStatus
	OpenHoldings int `json:"open_holdings"`
}

// GetStatus возвращает текущее состояние монитора
//
// GET /api/v1/status
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка хранилища позиций
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	open, err := h.holdings.Open(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list holdings: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{
		EngineStatus: h.state.Status(),
		OpenHoldings: len(open),
	})
}
