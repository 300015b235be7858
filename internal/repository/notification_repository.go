package repository

import (
	"context"
	"database/sql"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"bondmonitor/internal/models"
)

var notificationJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// NotificationRepository - работа с таблицей notifications
//
// Назначение: Data Access Layer для журнала уведомлений
//
// Функции:
// - Create: создать новое уведомление
// - GetRecent: получить последние N уведомлений
// - GetByTypes: получить уведомления определенных типов
// - DeleteOlderThan: автоочистка старых уведомлений
//
// Meta хранится как JSON в текстовой колонке.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository создает новый экземпляр репозитория
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create создает новое уведомление и заполняет n.ID
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (timestamp, type, severity, bond_code, message, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	var meta []byte
	if n.Meta != nil {
		var err error
		meta, err = notificationJSON.Marshal(n.Meta)
		if err != nil {
			return err
		}
	}

	return r.db.QueryRowContext(
		ctx,
		query,
		n.Timestamp,
		n.Type,
		n.Severity,
		n.BondCode,
		n.Message,
		meta,
	).Scan(&n.ID)
}

// GetRecent возвращает последние limit уведомлений, новые первыми
func (r *NotificationRepository) GetRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, bond_code, message, meta
		FROM notifications
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// GetByTypes возвращает последние limit уведомлений указанных типов
func (r *NotificationRepository) GetByTypes(ctx context.Context, types []string, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, bond_code, message, meta
		FROM notifications
		WHERE type = ANY($1)
		ORDER BY timestamp DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(types), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// DeleteOlderThan удаляет уведомления старше указанного момента.
// Возвращает количество удалённых строк.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE timestamp < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func scanNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var notifications []models.Notification
	for rows.Next() {
		var (
			n        models.Notification
			bondCode sql.NullString
			meta     []byte
		)
		err := rows.Scan(&n.ID, &n.Timestamp, &n.Type, &n.Severity, &bondCode, &n.Message, &meta)
		if err != nil {
			return nil, err
		}
		n.BondCode = bondCode.String

		if len(meta) > 0 {
			if err := notificationJSON.Unmarshal(meta, &n.Meta); err != nil {
				return nil, err
			}
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
