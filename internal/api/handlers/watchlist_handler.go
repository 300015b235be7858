package handlers

import (
	"net/http"

	"bondmonitor/internal/models"
)

// WatchlistHandler отвечает за доступ к списку наблюдения
//
// Endpoints:
// - GET /api/v1/watchlist - наблюдаемые пары облигация/акция
type WatchlistHandler struct {
	state MonitorState
}

// NewWatchlistHandler создает новый WatchlistHandler с внедрением зависимости
func NewWatchlistHandler(state MonitorState) *WatchlistHandler {
	return &WatchlistHandler{state: state}
}

// GetWatchlistResponse представляет ответ списка наблюдения
type GetWatchlistResponse struct {
	Pairs []models.WatchedPair `json:"pairs"`
	Total int                  `json:"total"`
}

// GetWatchlist возвращает наблюдаемые пары
//
// GET /api/v1/watchlist
//
// Список загружается один раз при старте процесса; изменение файла
// наблюдения требует перезапуска.
//
// HTTP коды:
// - 200 OK: успешно
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	pairs := h.state.Watchlist()

	respondWithJSON(w, http.StatusOK, GetWatchlistResponse{
		Pairs: pairs,
		Total: len(pairs),
	})
}
