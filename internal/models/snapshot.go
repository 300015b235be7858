package models

// SnapshotRow - одна строка рыночного среза за цикл опроса.
//
// Собирается слиянием справочной таблицы облигаций и таблицы реального
// времени по коду облигации. Живёт один цикл и заменяется следующим срезом.
//
// BondChange хранится долей (0.015 = 1.5%): провайдер отдаёт проценты,
// нормализация выполняется при слиянии.
type SnapshotRow struct {
	BondCode   string  `json:"bond_code"`
	BondName   string  `json:"bond_name"`
	BondPrice  float64 `json:"bond_price"`  // последняя цена облигации
	BondChange float64 `json:"bond_change"` // изменение облигации за день, доля
	StockCode  string  `json:"stock_code"`
	StockName  string  `json:"stock_name"`
	StockPrice float64 `json:"stock_price"` // последняя цена базовой акции
	Premium    float64 `json:"premium"`     // премия к конверсионной стоимости, %
	Turnover   float64 `json:"turnover"`    // оборот облигации
}
