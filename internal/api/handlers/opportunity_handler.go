package handlers

import (
	"net/http"
	"strconv"

	"bondmonitor/internal/models"
)

// OpportunityHandler отвечает за доступ к найденным сигналам
//
// Endpoints:
// - GET /api/v1/opportunities - последние сигналы импульс/отставание
type OpportunityHandler struct {
	state MonitorState
}

// NewOpportunityHandler создает новый OpportunityHandler с внедрением зависимости
func NewOpportunityHandler(state MonitorState) *OpportunityHandler {
	return &OpportunityHandler{state: state}
}

// GetOpportunitiesResponse представляет ответ списка сигналов
type GetOpportunitiesResponse struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
}

// GetOpportunities возвращает последние сигналы, новые последними
//
// GET /api/v1/opportunities
//
// Query параметры:
// - limit (int): вернуть только последние N сигналов
//
// Сигналы живут в кольцевом буфере процесса: глубина истории ограничена
// настройкой OPPORTUNITY_BUFFER.
//
// HTTP коды:
// - 200 OK: успешно
func (h *OpportunityHandler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities := h.state.Recent()

	if param := r.URL.Query().Get("limit"); param != "" {
		if limit, err := strconv.Atoi(param); err == nil && limit > 0 && limit < len(opportunities) {
			opportunities = opportunities[len(opportunities)-limit:]
		}
	}

	respondWithJSON(w, http.StatusOK, GetOpportunitiesResponse{
		Opportunities: opportunities,
		Total:         len(opportunities),
	})
}
