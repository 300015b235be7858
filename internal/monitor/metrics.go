package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики ядра мониторинга
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений о деградации поставщика данных

// ============ Циклы ============

// CyclesTotal - количество циклов по состоянию планировщика
var CyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "scheduler",
		Name:      "cycles_total",
		Help:      "Total number of scheduler cycles by session state",
	},
	[]string{"state"}, // in_session, out_of_session
)

// Состояния для CyclesTotal
const (
	cycleStateInSession    = "in_session"
	cycleStateOutOfSession = "out_of_session"
)

// ============ Сканирование ============

// ScanDuration - длительность полного сканирования рынка
var ScanDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "bondmonitor",
		Subsystem: "scan",
		Name:      "duration_seconds",
		Help:      "Duration of a full market scan including snapshot fetch",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
)

// OpportunitiesFound - найденные сигналы импульс/отставание
var OpportunitiesFound = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "scan",
		Name:      "opportunities_total",
		Help:      "Total number of pulse/lag opportunities detected",
	},
)

// SnapshotFetchErrors - отказы получения рыночного среза (цикл пропущен)
var SnapshotFetchErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "scan",
		Name:      "snapshot_fetch_errors_total",
		Help:      "Total number of snapshot fetch failures causing a skipped scan",
	},
)

// PairEvaluationPanics - паники при оценке отдельных пар (пара пропущена)
var PairEvaluationPanics = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "scan",
		Name:      "pair_evaluation_panics_total",
		Help:      "Total number of recovered panics while evaluating single pairs",
	},
)

// ============ Позиции ============

// HoldingsClosed - закрытые позиции по причинам
var HoldingsClosed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "holdings",
		Name:      "closed_total",
		Help:      "Total number of holdings closed by exit reason",
	},
	[]string{"reason"}, // TAKE_PROFIT, STOP_LOSS
)

// HoldingPriceErrors - отказы получения цены по позиции после всех retry
var HoldingPriceErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "holdings",
		Name:      "price_errors_total",
		Help:      "Total number of holdings skipped because price retrieval failed",
	},
)

// ProviderRetries - повторные попытки запросов к поставщику
var ProviderRetries = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "bondmonitor",
		Subsystem: "provider",
		Name:      "retries_total",
		Help:      "Total number of retried provider requests",
	},
)
