package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bondmonitor/internal/models"
)

// NotificationStore - журнал уведомлений для API
type NotificationStore interface {
	GetRecent(ctx context.Context, limit int) ([]models.Notification, error)
	GetByTypes(ctx context.Context, types []string, limit int) ([]models.Notification, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationHandler отвечает за журнал уведомлений
//
// Endpoints:
// - GET /api/v1/notifications - получение списка уведомлений
// - GET /api/v1/notifications?types=take_profit,stop_loss - с фильтрацией по типам
// - GET /api/v1/notifications?limit=50 - с ограничением количества
// - DELETE /api/v1/notifications - очистка старых уведомлений
//
// Журнал ведётся только при включённой БД; без неё маршруты не
// регистрируются.
type NotificationHandler struct {
	store NotificationStore
}

// NewNotificationHandler создает новый NotificationHandler с внедрением зависимости
func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// GetNotificationsResponse представляет ответ списка уведомлений
type GetNotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int                   `json:"total"`
}

// GetNotifications возвращает список уведомлений с фильтрацией
//
// GET /api/v1/notifications
//
// Query параметры:
// - types (string): фильтр по типам через запятую (opportunity,take_profit,stop_loss,error,skip)
// - limit (int): количество записей (по умолчанию 100, максимум 500)
//
// HTTP коды:
// - 200 OK: успешно, возвращает массив уведомлений
// - 500 Internal Server Error: ошибка сервера
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	var types []string
	if typesParam := r.URL.Query().Get("types"); typesParam != "" {
		for _, part := range strings.Split(typesParam, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				types = append(types, strings.ToUpper(trimmed))
			}
		}
	}

	limit := 100
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 500 {
		limit = 500
	}

	var (
		notifications []models.Notification
		err           error
	)
	if len(types) > 0 {
		notifications, err = h.store.GetByTypes(r.Context(), types, limit)
	} else {
		notifications, err = h.store.GetRecent(r.Context(), limit)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get notifications: "+err.Error())
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondWithJSON(w, http.StatusOK, GetNotificationsResponse{
		Notifications: notifications,
		Total:         len(notifications),
	})
}

// ClearNotifications удаляет старые уведомления
//
// DELETE /api/v1/notifications
//
// Query параметры:
// - older_than_days (int): удалить записи старше N дней (по умолчанию 0 - все)
//
// HTTP коды:
// - 200 OK: журнал очищен, возвращает количество удалённых записей
// - 400 Bad Request: невалидный параметр
// - 500 Internal Server Error: ошибка при очистке
func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	days := 0
	if param := r.URL.Query().Get("older_than_days"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "older_than_days must be a non-negative integer")
			return
		}
		days = parsed
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	deleted, err := h.store.DeleteOlderThan(r.Context(), cutoff)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to clear notifications: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Notifications cleared",
		Data:    map[string]int64{"deleted": deleted},
	})
}
