package models

import "time"

// Holding - открытая бумажная позиция по облигации.
//
// Позиция создаётся снаружи ядра (через API), ядро только следит за ней
// и закрывает по стоп-правилам. Реальных ордеров система не выставляет.
type Holding struct {
	BondCode   string    `json:"bond_code" db:"bond_code"`
	EntryPrice float64   `json:"entry_price" db:"entry_price"`
	OpenedAt   time.Time `json:"opened_at" db:"opened_at"`
}

// Причины закрытия позиции
const (
	ExitReasonTakeProfit = "TAKE_PROFIT" // pnl >= порога фиксации прибыли
	ExitReasonStopLoss   = "STOP_LOSS"   // pnl <= порога ограничения убытка
	ExitReasonManual     = "MANUAL"      // закрыта оператором через API
)

// ClosedHolding - закрытая позиция с итогами выхода.
type ClosedHolding struct {
	Holding
	ClosedAt  time.Time `json:"closed_at" db:"closed_at"`
	ExitPrice float64   `json:"exit_price" db:"exit_price"`
	Pnl       float64   `json:"pnl" db:"pnl"` // (exit - entry) / entry
	Reason    string    `json:"reason" db:"exit_reason"`
}
