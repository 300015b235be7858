package watchlist

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"bondmonitor/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load читает файл наблюдения и строит отображение bond_code -> WatchedPair.
//
// Формат файла: JSON массив записей с полями bond_code, bond_name,
// stock_code, stock_name, bond_price, premium_rate, amount. Необязательные
// поля по умолчанию пустая строка / ноль.
//
// Контракт отказа: отсутствующий или повреждённый файл даёт пустое
// отображение и ошибку, не панику. Записи без bond_code пропускаются.
// Пустой результат означает "нечего мониторить" - решает вызывающий.
func Load(path string) (map[string]models.WatchedPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist %s: %w", path, err)
	}

	var entries []models.WatchedPair
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
	}

	mapping := make(map[string]models.WatchedPair, len(entries))
	for _, e := range entries {
		if e.BondCode == "" {
			continue
		}
		mapping[e.BondCode] = e
	}

	return mapping, nil
}
