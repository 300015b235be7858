package models

import "time"

// Opportunity - найденный сигнал "импульс акции / отставание облигации".
//
// Создаётся оценщиком пары когда базовая акция выросла не меньше порога
// импульса, а облигация ещё не отыграла рост. После создания не изменяется.
type Opportunity struct {
	BondCode    string    `json:"bond_code"`
	BondName    string    `json:"bond_name"`
	StockCode   string    `json:"stock_code"`
	StockName   string    `json:"stock_name"`
	StockChange float64   `json:"stock_change"` // изменение акции между циклами, доля
	BondChange  float64   `json:"bond_change"`  // дневное изменение облигации, доля
	BondPrice   float64   `json:"bond_price"`
	Premium     float64   `json:"premium"`
	Turnover    float64   `json:"turnover"`
	FoundAt     time.Time `json:"found_at"`
}

// Spread возвращает расчётное арбитражное пространство:
// импульс акции минус уже отыгранное облигацией.
func (o *Opportunity) Spread() float64 {
	return o.StockChange - o.BondChange
}
