package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"bondmonitor/internal/models"
	"bondmonitor/internal/provider"
	"bondmonitor/pkg/utils"
)

// fakeProvider - управляемый поставщик для тестов сканера
type fakeProvider struct {
	reference []provider.ReferenceRow
	quotes    []provider.QuoteRow
	bars      map[string][]provider.MinuteBar

	refErr   error
	quoteErr error
	barsErr  error

	barCalls map[string]int
}

func (f *fakeProvider) ReferenceTable(ctx context.Context) ([]provider.ReferenceRow, error) {
	if f.refErr != nil {
		return nil, f.refErr
	}
	if len(f.reference) == 0 {
		return nil, provider.ErrEmptyResponse
	}
	return f.reference, nil
}

func (f *fakeProvider) QuoteTable(ctx context.Context) ([]provider.QuoteRow, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	if len(f.quotes) == 0 {
		return nil, provider.ErrEmptyResponse
	}
	return f.quotes, nil
}

func (f *fakeProvider) MinuteBars(ctx context.Context, symbol string) ([]provider.MinuteBar, error) {
	if f.barCalls == nil {
		f.barCalls = make(map[string]int)
	}
	f.barCalls[symbol]++
	if f.barsErr != nil {
		return nil, f.barsErr
	}
	bars, ok := f.bars[symbol]
	if !ok || len(bars) == 0 {
		return nil, provider.ErrNoQuote
	}
	return bars, nil
}

func refRow(bond, stock string, stockPrice float64) provider.ReferenceRow {
	return provider.ReferenceRow{
		BondCode:  bond,
		BondName:  "Conv " + bond,
		StockCode: stock,
		StockName: "Stock " + stock,

		StockPrice: stockPrice,
		BondPrice:  115.0,
		Premium:    10.0,
	}
}

func quoteRow(bond string, changePct float64) provider.QuoteRow {
	return provider.QuoteRow{
		Code:          bond,
		Last:          116.0,
		ChangePercent: changePct,
		Turnover:      5000,
	}
}

func newTestScanner(p provider.MarketData, cache *PriceCache, workers int) *Scanner {
	ev := NewEvaluator(cache, 0.015, 0.005)
	return NewScanner(p, ev, workers, utils.NopLogger())
}

func TestFetchSnapshotMergesAndNormalizes(t *testing.T) {
	p := &fakeProvider{
		reference: []provider.ReferenceRow{
			refRow("123456", "688001", 50.0),
			refRow("110095", "600001", 20.0), // без котировки - выпадает
		},
		quotes: []provider.QuoteRow{quoteRow("123456", 1.5)},
	}

	s := newTestScanner(p, NewPriceCache(4), 2)
	snapshot, err := s.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot returned error: %v", err)
	}

	if len(snapshot) != 1 {
		t.Fatalf("expected 1 usable row, got %d", len(snapshot))
	}

	row := snapshot["123456"]
	if row == nil {
		t.Fatal("row 123456 missing")
	}
	// Проценты провайдера нормализованы в долю
	if math.Abs(row.BondChange-0.015) > 1e-12 {
		t.Errorf("BondChange: expected 0.015, got %v", row.BondChange)
	}
	if row.BondPrice != 116.0 {
		t.Errorf("BondPrice must come from the quote table, got %v", row.BondPrice)
	}
	if row.StockPrice != 50.0 {
		t.Errorf("StockPrice must come from the reference table, got %v", row.StockPrice)
	}
}

func TestScanEmptyQuoteTableSkipsCycle(t *testing.T) {
	p := &fakeProvider{
		reference: []provider.ReferenceRow{refRow("123456", "688001", 50.0)},
		quotes:    nil, // пустая таблица котировок
	}

	cache := NewPriceCache(4)
	s := newTestScanner(p, cache, 2)

	watch := map[string]models.WatchedPair{
		"123456": {BondCode: "123456", StockCode: "688001"},
	}

	opps, err := s.Scan(context.Background(), watch)
	if !errors.Is(err, provider.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("failed scan must yield zero opportunities, got %d", len(opps))
	}
	// Срез не получен - кэш не тронут
	if cache.Len() != 0 {
		t.Error("cache must be untouched when the snapshot fetch fails")
	}
}

func TestScanTwoCycleOpportunity(t *testing.T) {
	p := &fakeProvider{
		reference: []provider.ReferenceRow{refRow("123456", "688001", 50.0)},
		quotes:    []provider.QuoteRow{quoteRow("123456", 0.3)},
	}

	cache := NewPriceCache(4)
	s := newTestScanner(p, cache, 2)
	watch := map[string]models.WatchedPair{
		"123456": {BondCode: "123456", BondName: "Conv", StockCode: "688001", StockName: "Stock"},
	}

	// Цикл 1: холодный старт
	opps, err := s.Scan(context.Background(), watch)
	if err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("cycle 1 must find nothing (cold start), got %d", len(opps))
	}

	// Цикл 2: акция +2%, облигация +0.2%
	p.reference = []provider.ReferenceRow{refRow("123456", "688001", 51.0)}
	p.quotes = []provider.QuoteRow{quoteRow("123456", 0.2)}

	opps, err = s.Scan(context.Background(), watch)
	if err != nil {
		t.Fatalf("cycle 2: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("cycle 2 must find 1 opportunity, got %d", len(opps))
	}
	if math.Abs(opps[0].StockChange-0.02) > 1e-9 {
		t.Errorf("StockChange: expected ~0.02, got %v", opps[0].StockChange)
	}
	if opps[0].BondChange != 0.002 {
		t.Errorf("BondChange: expected 0.002, got %v", opps[0].BondChange)
	}
}

// Большой watch-list с общими акциями: параллельный прогон должен дать
// тот же результат, что и последовательный - группа одной акции уходит
// одному воркеру в порядке watch-list.
func TestScanConcurrentMatchesSequential(t *testing.T) {
	const stocks = 10
	const bondsPerStock = 4

	var reference []provider.ReferenceRow
	var quotes []provider.QuoteRow
	watch := make(map[string]models.WatchedPair)

	for si := 0; si < stocks; si++ {
		stock := fmt.Sprintf("688%03d", si)
		for bi := 0; bi < bondsPerStock; bi++ {
			bond := fmt.Sprintf("12%d%03d", bi, si)
			reference = append(reference, refRow(bond, stock, 50.0))
			quotes = append(quotes, quoteRow(bond, 0.2))
			watch[bond] = models.WatchedPair{BondCode: bond, StockCode: stock}
		}
	}

	run := func(workers int) ([]models.Opportunity, *PriceCache) {
		p := &fakeProvider{reference: reference, quotes: quotes}
		cache := NewPriceCache(8)
		s := newTestScanner(p, cache, workers)

		if _, err := s.Scan(context.Background(), watch); err != nil {
			t.Fatal(err)
		}

		// Второй цикл: все акции +2%
		var ref2 []provider.ReferenceRow
		for _, r := range reference {
			r.StockPrice = 51.0
			ref2 = append(ref2, r)
		}
		p.reference = ref2

		opps, err := s.Scan(context.Background(), watch)
		if err != nil {
			t.Fatal(err)
		}
		return opps, cache
	}

	seqOpps, seqCache := run(1)
	conOpps, conCache := run(8)

	if len(seqOpps) != len(conOpps) {
		t.Fatalf("sequential found %d, concurrent found %d", len(seqOpps), len(conOpps))
	}
	for i := range seqOpps {
		if seqOpps[i].BondCode != conOpps[i].BondCode {
			t.Errorf("order mismatch at %d: %s vs %s", i, seqOpps[i].BondCode, conOpps[i].BondCode)
		}
		if math.Abs(seqOpps[i].StockChange-conOpps[i].StockChange) > 1e-12 {
			t.Errorf("pair %s: change %v vs %v", seqOpps[i].BondCode,
				seqOpps[i].StockChange, conOpps[i].StockChange)
		}
	}

	if seqCache.Len() != conCache.Len() {
		t.Errorf("cache size mismatch: %d vs %d", seqCache.Len(), conCache.Len())
	}
}

func TestEvaluatePairRecoversFromPanic(t *testing.T) {
	// Оценщик без кэша паникует при обращении - сканер обязан погасить
	// панику и вернуть отсутствие сигнала
	s := NewScanner(nil, NewEvaluator(nil, 0.015, 0.005), 1, utils.NopLogger())

	pair := models.WatchedPair{BondCode: "123456", StockCode: "688001"}
	row := &models.SnapshotRow{BondCode: "123456", StockPrice: 50.0}

	if opp := s.evaluatePair(pair, row); opp != nil {
		t.Errorf("panicking evaluation must yield nil, got %+v", opp)
	}
}
