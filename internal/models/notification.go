package models

import "time"

// Notification представляет уведомление о событии мониторинга
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`         // OPPORTUNITY, TAKE_PROFIT, STOP_LOSS, ERROR, SKIP
	Severity  string                 `json:"severity" db:"severity"` // info, warn, error
	BondCode  string                 `json:"bond_code,omitempty" db:"bond_code"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeOpportunity = "OPPORTUNITY" // найден сигнал импульс/отставание
	NotificationTypeTakeProfit  = "TAKE_PROFIT" // позиция закрыта с прибылью
	NotificationTypeStopLoss    = "STOP_LOSS"   // позиция закрыта по стоп-лоссу
	NotificationTypeError       = "ERROR"       // ошибка получения данных
	NotificationTypeSkip        = "SKIP"        // цикл или пара пропущены
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
