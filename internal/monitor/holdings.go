package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bondmonitor/internal/models"
	"bondmonitor/internal/provider"
	"bondmonitor/pkg/retry"
)

// HoldingStore - хранилище открытых бумажных позиций
//
// Реализации: Postgres репозиторий (internal/repository) и хранилище
// в памяти для запуска без БД.
type HoldingStore interface {
	// Open возвращает все открытые позиции
	Open(ctx context.Context) ([]models.Holding, error)

	// Add открывает новую позицию
	Add(ctx context.Context, h models.Holding) error

	// Close закрывает позицию с итогами выхода
	Close(ctx context.Context, bondCode string, exitPrice, pnl float64, reason string) error
}

// CloseFunc вызывается после закрытия позиции (уведомления, broadcast)
type CloseFunc func(h models.Holding, exitPrice, pnl float64, reason string)

// HoldingsTracker - сопровождение позиций по стоп-правилам
//
// Назначение:
// Раз в цикл для каждой открытой позиции получает свежую цену из
// минутных данных и считает pnl = (current - entry) / entry:
//   - pnl >= stopProfit  -> закрытие с фиксацией прибыли
//   - pnl <= stopLoss    -> закрытие по стоп-лоссу
//
// Обе границы включающие; при одновременном срабатывании приоритет
// у фиксации прибыли (проверяется первой).
//
// Отказы:
// Временные сетевые ошибки ретраятся с фиксированной задержкой,
// прочие прекращают попытки сразу. Отказ по одной позиции не мешает
// проверке остальных.
type HoldingsTracker struct {
	store    HoldingStore
	provider provider.MarketData

	stopProfit float64
	stopLoss   float64

	retryCfg retry.Config

	onClose CloseFunc
	log     *zap.SugaredLogger
}

// NewHoldingsTracker создаёт трекер позиций.
// onClose может быть nil.
func NewHoldingsTracker(
	store HoldingStore,
	p provider.MarketData,
	stopProfit, stopLoss float64,
	retryCfg retry.Config,
	onClose CloseFunc,
	log *zap.SugaredLogger,
) *HoldingsTracker {
	retryCfg.RetryIf = provider.IsTemporary
	return &HoldingsTracker{
		store:      store,
		provider:   p,
		stopProfit: stopProfit,
		stopLoss:   stopLoss,
		retryCfg:   retryCfg,
		onClose:    onClose,
		log:        log,
	}
}

// CheckAll проверяет все открытые позиции и закрывает пересёкшие порог.
// Возвращает количество закрытых позиций.
func (t *HoldingsTracker) CheckAll(ctx context.Context) int {
	holdings, err := t.store.Open(ctx)
	if err != nil {
		t.log.Errorf("list open holdings: %v", err)
		return 0
	}

	if len(holdings) == 0 {
		return 0
	}

	t.log.Debugf("checking %d open holdings", len(holdings))

	closed := 0
	for _, h := range holdings {
		if ctx.Err() != nil {
			return closed
		}
		if t.checkOne(ctx, h) {
			closed++
		}
	}

	return closed
}

// checkOne проверяет одну позицию; true если позиция закрыта
func (t *HoldingsTracker) checkOne(ctx context.Context, h models.Holding) bool {
	price, err := t.latestPrice(ctx, h.BondCode)
	if err != nil {
		HoldingPriceErrors.Inc()
		t.log.Warnf("holding %s: price retrieval failed, skipping this cycle: %v", h.BondCode, err)
		return false
	}

	if h.EntryPrice <= 0 {
		t.log.Errorf("holding %s: invalid entry price %v", h.BondCode, h.EntryPrice)
		return false
	}

	pnl := (price - h.EntryPrice) / h.EntryPrice

	// Фиксация прибыли проверяется первой и имеет приоритет
	switch {
	case pnl >= t.stopProfit:
		t.close(ctx, h, price, pnl, models.ExitReasonTakeProfit)
		return true
	case pnl <= t.stopLoss:
		t.close(ctx, h, price, pnl, models.ExitReasonStopLoss)
		return true
	}

	return false
}

func (t *HoldingsTracker) close(ctx context.Context, h models.Holding, exitPrice, pnl float64, reason string) {
	if err := t.store.Close(ctx, h.BondCode, exitPrice, pnl, reason); err != nil {
		t.log.Errorf("close holding %s: %v", h.BondCode, err)
		return
	}

	HoldingsClosed.WithLabelValues(reason).Inc()
	t.log.Infof("holding closed: %s | reason %s | pnl %+.2f%% | price %.2f",
		h.BondCode, reason, pnl*100, exitPrice)

	if t.onClose != nil {
		t.onClose(h, exitPrice, pnl, reason)
	}
}

// latestPrice возвращает цену закрытия последнего минутного бара
// с ограниченным retry по временным ошибкам
func (t *HoldingsTracker) latestPrice(ctx context.Context, bondCode string) (float64, error) {
	cfg := t.retryCfg
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		ProviderRetries.Inc()
		t.log.Warnf("holding %s: minute bars attempt %d failed (%v), retrying in %v",
			bondCode, attempt, err, delay)
	}

	bars, err := retry.DoWithResult(ctx, func() ([]provider.MinuteBar, error) {
		return t.provider.MinuteBars(ctx, bondCode)
	}, cfg)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, provider.ErrNoQuote
	}

	return bars[len(bars)-1].Close, nil
}
