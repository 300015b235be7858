package monitor

import (
	"time"

	"bondmonitor/internal/models"
)

// Evaluator применяет решающее правило "импульс/отставание" к одной паре
//
// Правило (оба условия обязательны):
//  1. изменение базовой акции между циклами >= PulseThreshold (включительно)
//  2. дневное изменение облигации < MinBondChange (строго)
//
// Изменение акции считается через PriceCache.Update - с побочным эффектом:
// кэш обновляется всегда, даже если сигнала нет. Благодаря этому все пары
// с общей акцией в следующем цикле увидят одну и ту же предыдущую цену.
type Evaluator struct {
	cache          *PriceCache
	pulseThreshold float64
	minBondChange  float64
}

// NewEvaluator создаёт оценщик поверх общего кэша цен
func NewEvaluator(cache *PriceCache, pulseThreshold, minBondChange float64) *Evaluator {
	return &Evaluator{
		cache:          cache,
		pulseThreshold: pulseThreshold,
		minBondChange:  minBondChange,
	}
}

// Evaluate оценивает одну пару против строки рыночного среза.
//
// row == nil означает, что по облигации нет котировки в этом цикле -
// пара пропускается без ошибки и без изменения кэша.
// Возвращает nil когда сигнала нет.
func (ev *Evaluator) Evaluate(pair models.WatchedPair, row *models.SnapshotRow) *models.Opportunity {
	if row == nil {
		return nil
	}

	stockChange := ev.cache.Update(pair.StockCode, row.StockPrice)

	// Холодный старт даёт stockChange == 0 и никогда не проходит порог
	if stockChange < ev.pulseThreshold {
		return nil
	}

	if row.BondChange >= ev.minBondChange {
		// Облигация уже отыграла рост - отставания нет
		return nil
	}

	return &models.Opportunity{
		BondCode:    pair.BondCode,
		BondName:    pair.BondName,
		StockCode:   pair.StockCode,
		StockName:   pair.StockName,
		StockChange: stockChange,
		BondChange:  row.BondChange,
		BondPrice:   row.BondPrice,
		Premium:     row.Premium,
		Turnover:    row.Turnover,
		FoundAt:     time.Now(),
	}
}
