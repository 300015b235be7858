package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"bondmonitor/internal/models"
)

// HoldingRepository - работа с таблицей holdings
//
// Назначение: Data Access Layer для бумажных позиций
//
// Открытая позиция - строка с closed_at IS NULL. Закрытие не удаляет
// строку, а заполняет итоги выхода: история остаётся в той же таблице.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository создает новый экземпляр репозитория
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// Open возвращает все открытые позиции
func (r *HoldingRepository) Open(ctx context.Context) ([]models.Holding, error) {
	query := `
		SELECT bond_code, entry_price, opened_at
		FROM holdings
		WHERE closed_at IS NULL
		ORDER BY bond_code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.BondCode, &h.EntryPrice, &h.OpenedAt); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return holdings, nil
}

// Add открывает новую позицию
func (r *HoldingRepository) Add(ctx context.Context, h models.Holding) error {
	if h.BondCode == "" || h.EntryPrice <= 0 {
		return ErrInvalidHolding
	}
	if h.OpenedAt.IsZero() {
		h.OpenedAt = time.Now()
	}

	query := `
		INSERT INTO holdings (bond_code, entry_price, opened_at)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, h.BondCode, h.EntryPrice, h.OpenedAt)
	if err != nil {
		if isHoldingUniqueViolation(err) {
			return ErrHoldingExists
		}
		return err
	}

	return nil
}

// Close закрывает открытую позицию с итогами выхода
func (r *HoldingRepository) Close(ctx context.Context, bondCode string, exitPrice, pnl float64, reason string) error {
	query := `
		UPDATE holdings
		SET closed_at = $1, exit_price = $2, pnl = $3, exit_reason = $4
		WHERE bond_code = $5 AND closed_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now(), exitPrice, pnl, reason, bondCode)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrHoldingNotFound
	}

	return nil
}

// Closed возвращает историю закрытых позиций, новые последними.
// limit <= 0 означает без ограничения.
func (r *HoldingRepository) Closed(ctx context.Context, limit int) ([]models.ClosedHolding, error) {
	query := `
		SELECT bond_code, entry_price, opened_at, closed_at, exit_price, pnl, exit_reason
		FROM holdings
		WHERE closed_at IS NOT NULL
		ORDER BY closed_at`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		query += ` DESC LIMIT $1`
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.ClosedHolding
	for rows.Next() {
		var c models.ClosedHolding
		err := rows.Scan(
			&c.BondCode,
			&c.EntryPrice,
			&c.OpenedAt,
			&c.ClosedAt,
			&c.ExitPrice,
			&c.Pnl,
			&c.Reason,
		)
		if err != nil {
			return nil, err
		}
		history = append(history, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	// LIMIT с DESC отдаёт новые первыми - разворачиваем
	if limit > 0 {
		for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
			history[i], history[j] = history[j], history[i]
		}
	}

	return history, nil
}

// isHoldingUniqueViolation проверяет, является ли ошибка нарушением UNIQUE constraint
func isHoldingUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}
