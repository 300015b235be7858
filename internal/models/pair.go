package models

// WatchedPair представляет связку "конвертируемая облигация - базовая акция"
// из файла наблюдения оператора.
//
// Создаётся один раз при загрузке watch-list и не изменяется до конца
// работы процесса. Уникальный ключ - BondCode.
type WatchedPair struct {
	BondCode   string  `json:"bond_code"`    // код облигации (6 цифр, например "123456")
	BondName   string  `json:"bond_name"`    // название облигации
	StockCode  string  `json:"stock_code"`   // код базовой акции
	StockName  string  `json:"stock_name"`   // название базовой акции
	RefPrice   float64 `json:"bond_price"`   // цена облигации на момент добавления
	RefPremium float64 `json:"premium_rate"` // премия к конверсионной стоимости, %
	RefAmount  float64 `json:"amount"`       // оборот на момент добавления
}
