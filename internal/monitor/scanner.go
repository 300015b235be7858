package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"bondmonitor/internal/models"
	"bondmonitor/internal/provider"
)

// Scanner - сборка рыночного среза и обход watch-list пулом воркеров
//
// Назначение:
// Раз в цикл получает две таблицы поставщика, сливает их в срез
// bond_code -> SnapshotRow и прогоняет все наблюдаемые пары через
// оценщик на ограниченном пуле воркеров.
//
// Конкурентность:
// - Срез получается один раз до fan-out; воркеры его только читают
// - Пары группируются по коду базовой акции, группа целиком уходит
//   одному воркеру в порядке watch-list: обновления кэша по одному
//   ключу детерминированы, как при последовательном обходе
// - Барьер: сбор результатов начинается только после завершения всех
//   воркеров
// - Паника при оценке одной пары гасится и не прерывает остальных
type Scanner struct {
	provider  provider.MarketData
	evaluator *Evaluator
	workers   int
	log       *zap.SugaredLogger
}

// NewScanner создаёт сканер.
// workers ограничивает число одновременных оценок (минимум 1).
func NewScanner(p provider.MarketData, ev *Evaluator, workers int, log *zap.SugaredLogger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		provider:  p,
		evaluator: ev,
		workers:   workers,
		log:       log,
	}
}

// FetchSnapshot собирает рыночный срез текущего цикла.
//
// Слияние: справочная таблица left-join таблица котировок по коду
// облигации; строки без живой котировки отбрасываются (ожидаемый
// не-матч, не ошибка). Изменение облигации нормализуется из процентов
// в долю здесь, один раз.
//
// Любой отказ поставщика означает пропуск всего сканирования цикла:
// работать на частичных данных нельзя.
func (s *Scanner) FetchSnapshot(ctx context.Context) (map[string]*models.SnapshotRow, error) {
	basic, err := s.provider.ReferenceTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch reference table: %w", err)
	}

	quotes, err := s.provider.QuoteTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch quote table: %w", err)
	}

	quoteByCode := make(map[string]provider.QuoteRow, len(quotes))
	for _, q := range quotes {
		quoteByCode[q.Code] = q
	}

	snapshot := make(map[string]*models.SnapshotRow, len(basic))
	for _, b := range basic {
		q, ok := quoteByCode[b.BondCode]
		if !ok {
			// Нет живой котировки - строка не попадает в срез
			continue
		}

		snapshot[b.BondCode] = &models.SnapshotRow{
			BondCode:   b.BondCode,
			BondName:   b.BondName,
			BondPrice:  q.Last,
			BondChange: q.ChangePercent / 100, // проценты -> доля
			StockCode:  b.StockCode,
			StockName:  b.StockName,
			StockPrice: b.StockPrice,
			Premium:    b.Premium,
			Turnover:   q.Turnover,
		}
	}

	s.log.Debugf("snapshot merged: %d reference rows, %d quotes, %d usable",
		len(basic), len(quotes), len(snapshot))

	return snapshot, nil
}

// Scan выполняет полное сканирование watch-list за один цикл.
//
// При отказе получения среза возвращает ошибку, кэш цен остаётся
// нетронутым. Результат отсортирован по коду облигации.
func (s *Scanner) Scan(ctx context.Context, watch map[string]models.WatchedPair) ([]models.Opportunity, error) {
	started := time.Now()
	defer func() {
		ScanDuration.Observe(time.Since(started).Seconds())
	}()

	snapshot, err := s.FetchSnapshot(ctx)
	if err != nil {
		SnapshotFetchErrors.Inc()
		return nil, err
	}

	groups := groupByStock(watch)

	jobs := make(chan []models.WatchedPair)
	results := make(chan []models.Opportunity, len(groups))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				results <- s.evaluateGroup(group, snapshot)
			}
		}()
	}

	for _, group := range groups {
		jobs <- group
	}
	close(jobs)

	// Барьер: сбор только после завершения всех воркеров
	wg.Wait()
	close(results)

	var opportunities []models.Opportunity
	for batch := range results {
		opportunities = append(opportunities, batch...)
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].BondCode < opportunities[j].BondCode
	})

	for i := range opportunities {
		OpportunitiesFound.Inc()
		opp := &opportunities[i]
		s.log.Infof("opportunity: stock %s(%s) %+.2f%% | bond %s(%s) %+.2f%% | price %.2f | premium %.2f%% | spread %+.2f%%",
			opp.StockName, opp.StockCode, opp.StockChange*100,
			opp.BondName, opp.BondCode, opp.BondChange*100,
			opp.BondPrice, opp.Premium, opp.Spread()*100)
	}

	return opportunities, nil
}

// evaluateGroup оценивает пары одной базовой акции последовательно.
// Паника одной пары не прерывает оценку остальных пар группы.
func (s *Scanner) evaluateGroup(group []models.WatchedPair, snapshot map[string]*models.SnapshotRow) []models.Opportunity {
	var found []models.Opportunity

	for _, pair := range group {
		opp := s.evaluatePair(pair, snapshot[pair.BondCode])
		if opp != nil {
			found = append(found, *opp)
		}
	}

	return found
}

func (s *Scanner) evaluatePair(pair models.WatchedPair, row *models.SnapshotRow) (opp *models.Opportunity) {
	defer func() {
		if r := recover(); r != nil {
			PairEvaluationPanics.Inc()
			s.log.Errorf("evaluation of pair %s panicked: %v", pair.BondCode, r)
			opp = nil
		}
	}()

	return s.evaluator.Evaluate(pair, row)
}

// groupByStock группирует пары по коду базовой акции.
// Внутри группы пары отсортированы по коду облигации, группы - по коду
// акции: порядок обработки общей акции детерминирован.
func groupByStock(watch map[string]models.WatchedPair) [][]models.WatchedPair {
	byStock := make(map[string][]models.WatchedPair)
	for _, pair := range watch {
		byStock[pair.StockCode] = append(byStock[pair.StockCode], pair)
	}

	stocks := make([]string, 0, len(byStock))
	for code := range byStock {
		stocks = append(stocks, code)
	}
	sort.Strings(stocks)

	groups := make([][]models.WatchedPair, 0, len(byStock))
	for _, code := range stocks {
		group := byStock[code]
		sort.Slice(group, func(i, j int) bool {
			return group[i].BondCode < group[j].BondCode
		})
		groups = append(groups, group)
	}

	return groups
}
