package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bondmonitor/internal/models"
	"bondmonitor/internal/repository"
)

// HoldingStore - хранилище позиций для API
type HoldingStore interface {
	Open(ctx context.Context) ([]models.Holding, error)
	Add(ctx context.Context, h models.Holding) error
	Close(ctx context.Context, bondCode string, exitPrice, pnl float64, reason string) error
	Closed(ctx context.Context, limit int) ([]models.ClosedHolding, error)
}

// HoldingHandler отвечает за управление бумажными позициями
//
// Endpoints:
// - GET /api/v1/holdings - открытые позиции и недавняя история
// - POST /api/v1/holdings - открыть позицию
// - DELETE /api/v1/holdings/{code} - закрыть позицию вручную
//
// Назначение:
// Позиции открывает оператор после проверки сигнала; монитор сам
// закрывает их по стоп-правилам. Ручное закрытие фиксируется с
// причиной MANUAL.
type HoldingHandler struct {
	store HoldingStore
}

// NewHoldingHandler создает новый HoldingHandler с внедрением зависимости
func NewHoldingHandler(store HoldingStore) *HoldingHandler {
	return &HoldingHandler{store: store}
}

// GetHoldingsResponse представляет ответ списка позиций
type GetHoldingsResponse struct {
	Open   []models.Holding       `json:"open"`
	Closed []models.ClosedHolding `json:"closed"`
}

// GetHoldings возвращает открытые позиции и недавнюю историю закрытий
//
// GET /api/v1/holdings
//
// Query параметры:
// - history (int): сколько закрытых позиций вернуть (по умолчанию 20)
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка хранилища
func (h *HoldingHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	historyLimit := 20
	if param := r.URL.Query().Get("history"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed >= 0 {
			historyLimit = parsed
		}
	}

	open, err := h.store.Open(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list holdings: "+err.Error())
		return
	}

	var closed []models.ClosedHolding
	if historyLimit > 0 {
		closed, err = h.store.Closed(r.Context(), historyLimit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to list closed holdings: "+err.Error())
			return
		}
	}

	if open == nil {
		open = []models.Holding{}
	}
	if closed == nil {
		closed = []models.ClosedHolding{}
	}

	respondWithJSON(w, http.StatusOK, GetHoldingsResponse{Open: open, Closed: closed})
}

// CreateHoldingRequest представляет запрос открытия позиции
type CreateHoldingRequest struct {
	BondCode   string  `json:"bond_code"`
	EntryPrice float64 `json:"entry_price"`
}

// CreateHolding открывает новую позицию
//
// POST /api/v1/holdings
//
// Body: {"bond_code": "123456", "entry_price": 115.2}
//
// HTTP коды:
// - 201 Created: позиция открыта
// - 400 Bad Request: невалидное тело запроса
// - 409 Conflict: позиция по этому коду уже открыта
// - 500 Internal Server Error: ошибка хранилища
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var req CreateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	holding := models.Holding{
		BondCode:   req.BondCode,
		EntryPrice: req.EntryPrice,
	}

	if err := h.store.Add(r.Context(), holding); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidHolding):
			respondWithError(w, http.StatusBadRequest, "bond_code and positive entry_price are required")
		case errors.Is(err, repository.ErrHoldingExists):
			respondWithError(w, http.StatusConflict, "Holding already open for "+req.BondCode)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to add holding: "+err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, SuccessResponse{
		Message: "Holding opened",
		Data:    holding,
	})
}

// CloseHoldingRequest представляет запрос ручного закрытия
type CloseHoldingRequest struct {
	ExitPrice float64 `json:"exit_price"`
}

// CloseHolding закрывает позицию вручную
//
// DELETE /api/v1/holdings/{code}
//
// Body: {"exit_price": 116.5}
//
// Pnl считается от цены входа открытой позиции; причина закрытия MANUAL.
//
// HTTP коды:
// - 200 OK: позиция закрыта
// - 400 Bad Request: невалидное тело запроса
// - 404 Not Found: открытой позиции с таким кодом нет
// - 500 Internal Server Error: ошибка хранилища
func (h *HoldingHandler) CloseHolding(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req CloseHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ExitPrice <= 0 {
		respondWithError(w, http.StatusBadRequest, "exit_price must be positive")
		return
	}

	// Цена входа нужна для расчёта pnl
	open, err := h.store.Open(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list holdings: "+err.Error())
		return
	}

	var entry float64
	found := false
	for _, holding := range open {
		if holding.BondCode == code {
			entry = holding.EntryPrice
			found = true
			break
		}
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "No open holding for "+code)
		return
	}

	pnl := (req.ExitPrice - entry) / entry

	if err := h.store.Close(r.Context(), code, req.ExitPrice, pnl, models.ExitReasonManual); err != nil {
		if errors.Is(err, repository.ErrHoldingNotFound) {
			respondWithError(w, http.StatusNotFound, "No open holding for "+code)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to close holding: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Holding closed",
		Data: map[string]interface{}{
			"bond_code":  code,
			"exit_price": req.ExitPrice,
			"pnl":        pnl,
			"reason":     models.ExitReasonManual,
		},
	})
}
