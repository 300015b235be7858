package monitor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"bondmonitor/internal/models"
	"bondmonitor/pkg/utils"
)

// ErrEmptyWatchlist - watch-list пуст, мониторить нечего
var ErrEmptyWatchlist = errors.New("watchlist is empty")

// Broadcaster рассылает события подписчикам (websocket hub).
// Может быть nil - рассылка тогда отключена.
type Broadcaster interface {
	BroadcastOpportunity(opp models.Opportunity)
	BroadcastNotification(n models.Notification)
}

// NotificationSink - журнал уведомлений (репозиторий БД).
// Может быть nil - журнал тогда не ведётся.
type NotificationSink interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Engine - планировщик циклов мониторинга
//
// Назначение:
// Бесконечный цикл с паузой CheckInterval. Внутри торговой сессии
// каждый цикл сначала проверяет открытые позиции, затем сканирует
// watch-list; вне сессии цикл сводится к heartbeat. Остановка - через
// отмену контекста, с отчётом об открытых позициях.
//
// Функции:
// - Хранит кольцевой буфер последних сигналов для API
// - Рассылает сигналы и закрытия позиций через Broadcaster
// - Пишет уведомления в NotificationSink
type Engine struct {
	scanner *Scanner
	tracker *HoldingsTracker
	store   HoldingStore
	watch   map[string]models.WatchedPair

	interval       time.Duration
	sessionEndHour int

	broadcaster Broadcaster
	sink        NotificationSink
	log         *zap.SugaredLogger

	// подменяется в тестах
	now func() time.Time

	mu        sync.RWMutex
	recent    []models.Opportunity
	recentCap int
	cycles    int64
	lastScan  time.Time
	startedAt time.Time
}

// EngineOptions - зависимости и параметры планировщика
type EngineOptions struct {
	Scanner *Scanner
	Tracker *HoldingsTracker
	Store   HoldingStore
	Watch   map[string]models.WatchedPair

	CheckInterval     time.Duration
	SessionEndHour    int
	OpportunityBuffer int

	Broadcaster Broadcaster      // опционально
	Sink        NotificationSink // опционально
	Log         *zap.SugaredLogger
}

// NewEngine создаёт планировщик. Watch-list не должен быть пуст.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if len(opts.Watch) == 0 {
		return nil, ErrEmptyWatchlist
	}

	recentCap := opts.OpportunityBuffer
	if recentCap < 1 {
		recentCap = 100
	}

	return &Engine{
		scanner:        opts.Scanner,
		tracker:        opts.Tracker,
		store:          opts.Store,
		watch:          opts.Watch,
		interval:       opts.CheckInterval,
		sessionEndHour: opts.SessionEndHour,
		broadcaster:    opts.Broadcaster,
		sink:           opts.Sink,
		log:            opts.Log,
		now:            time.Now,
		recentCap:      recentCap,
	}, nil
}

// Run крутит циклы мониторинга до отмены контекста
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.startedAt = e.now()
	e.mu.Unlock()

	e.log.Infof("monitor started: %d pairs, interval %v, afternoon session ends at %02d:00",
		len(e.watch), e.interval, e.sessionEndHour)

	for {
		e.RunCycle(ctx)

		select {
		case <-ctx.Done():
			e.reportShutdown()
			return ctx.Err()
		case <-time.After(e.interval):
		}
	}
}

// RunCycle выполняет один цикл: позиции, затем сканирование.
// Вне торговой сессии цикл сводится к heartbeat.
func (e *Engine) RunCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	now := e.now()

	e.mu.Lock()
	e.cycles++
	e.mu.Unlock()

	if !utils.InTradingSession(now, e.sessionEndHour) {
		CyclesTotal.WithLabelValues(cycleStateOutOfSession).Inc()
		e.log.Debugf("outside trading session (%s), waiting", now.Format("15:04:05"))
		return
	}

	CyclesTotal.WithLabelValues(cycleStateInSession).Inc()

	// Сначала сопровождение позиций: стоп-правила важнее поиска новых сигналов
	e.tracker.CheckAll(ctx)

	opps, err := e.scanner.Scan(ctx, e.watch)
	if err != nil {
		e.log.Warnf("scan skipped: %v", err)
		e.notify(ctx, models.Notification{
			Timestamp: now,
			Type:      models.NotificationTypeSkip,
			Severity:  models.SeverityWarn,
			Message:   "scan skipped: " + err.Error(),
		})
		return
	}

	e.mu.Lock()
	e.lastScan = now
	e.mu.Unlock()

	for _, opp := range opps {
		e.recordOpportunity(ctx, opp)
	}
}

// recordOpportunity кладёт сигнал в кольцевой буфер и рассылает его
func (e *Engine) recordOpportunity(ctx context.Context, opp models.Opportunity) {
	e.mu.Lock()
	e.recent = append(e.recent, opp)
	if len(e.recent) > e.recentCap {
		e.recent = e.recent[len(e.recent)-e.recentCap:]
	}
	e.mu.Unlock()

	if e.broadcaster != nil {
		e.broadcaster.BroadcastOpportunity(opp)
	}

	e.notify(ctx, models.Notification{
		Timestamp: opp.FoundAt,
		Type:      models.NotificationTypeOpportunity,
		Severity:  models.SeverityInfo,
		BondCode:  opp.BondCode,
		Message:   "pulse/lag signal detected",
		Meta: map[string]interface{}{
			"stock_code":   opp.StockCode,
			"stock_change": opp.StockChange,
			"bond_change":  opp.BondChange,
			"spread":       opp.Spread(),
		},
	})
}

// HandleHoldingClosed - CloseFunc для трекера позиций
func (e *Engine) HandleHoldingClosed(h models.Holding, exitPrice, pnl float64, reason string) {
	typ := models.NotificationTypeStopLoss
	if reason == models.ExitReasonTakeProfit {
		typ = models.NotificationTypeTakeProfit
	}

	n := models.Notification{
		Timestamp: e.now(),
		Type:      typ,
		Severity:  models.SeverityInfo,
		BondCode:  h.BondCode,
		Message:   "holding closed: " + reason,
		Meta: map[string]interface{}{
			"entry_price": h.EntryPrice,
			"exit_price":  exitPrice,
			"pnl":         pnl,
		},
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastNotification(n)
	}
	e.notify(context.Background(), n)
}

func (e *Engine) notify(ctx context.Context, n models.Notification) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Create(ctx, &n); err != nil {
		e.log.Errorf("store notification: %v", err)
	}
}

func (e *Engine) reportShutdown() {
	holdings, err := e.store.Open(context.Background())
	if err != nil {
		e.log.Warnf("shutdown: cannot list open holdings: %v", err)
		return
	}

	e.log.Infof("monitor stopped: %d open holdings remain", len(holdings))
	for _, h := range holdings {
		e.log.Infof("  open holding: %s entry %.2f since %s",
			h.BondCode, h.EntryPrice, h.OpenedAt.Format("2006-01-02 15:04:05"))
	}
}

// ============ Доступ для API ============

// EngineStatus - снимок состояния планировщика
type EngineStatus struct {
	StartedAt    time.Time `json:"started_at"`
	Cycles       int64     `json:"cycles"`
	LastScan     time.Time `json:"last_scan,omitempty"`
	WatchedPairs int       `json:"watched_pairs"`
	InSession    bool      `json:"in_session"`
}

// Status возвращает текущее состояние планировщика
func (e *Engine) Status() EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return EngineStatus{
		StartedAt:    e.startedAt,
		Cycles:       e.cycles,
		LastScan:     e.lastScan,
		WatchedPairs: len(e.watch),
		InSession:    utils.InTradingSession(e.now(), e.sessionEndHour),
	}
}

// Recent возвращает последние сигналы, новые последними
func (e *Engine) Recent() []models.Opportunity {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.Opportunity, len(e.recent))
	copy(out, e.recent)
	return out
}

// Watchlist возвращает наблюдаемые пары в порядке кода облигации
func (e *Engine) Watchlist() []models.WatchedPair {
	pairs := make([]models.WatchedPair, 0, len(e.watch))
	for _, p := range e.watch {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].BondCode < pairs[j].BondCode
	})
	return pairs
}
