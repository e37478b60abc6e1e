package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal   *prometheus.CounterVec
	dbQueryDuration  *prometheus.HistogramVec
	dbOpenConns      *prometheus.GaugeVec
	dbInUseConns     *prometheus.GaugeVec
	dbIdleConns      *prometheus.GaugeVec
	dbWaitCountTotal *prometheus.GaugeVec

	appointmentsCreated  *prometheus.CounterVec
	botMessagesTotal     *prometheus.CounterVec
	sideEffectFailures   *prometheus.CounterVec
	conversationsExpired prometheus.Counter
}

// New создает и регистрирует метрики в registry по умолчанию
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в указанном registry
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbIdleConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbWaitCountTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),
		appointmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Appointments created, by origin",
			ConstLabels: constLabels,
		}, []string{"origin"}),
		botMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bot_messages_total",
			Help:        "Inbound bot messages processed, by conversation state and outcome",
			ConstLabels: constLabels,
		}, []string{"state", "outcome"}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "side_effect_failures_total",
			Help:        "Best-effort side effects that failed, by operation",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		conversationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "conversations_expired_total",
			Help:        "Conversations deactivated by the idle sweep",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueriesTotal,
		m.dbQueryDuration,
		m.dbOpenConns,
		m.dbInUseConns,
		m.dbIdleConns,
		m.dbWaitCountTotal,
		m.appointmentsCreated,
		m.botMessagesTotal,
		m.sideEffectFailures,
		m.conversationsExpired,
	)

	return m
}

// ObserveHTTPRequest записывает метрики HTTP-запроса
func (m *Metrics) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery implements dbmetrics.Recorder
func (m *Metrics) ObserveDBQuery(_ string, operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueriesTotal.WithLabelValues(operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats implements dbmetrics.Recorder
func (m *Metrics) SetDBPoolStats(service string, stats sql.DBStats) {
	m.dbOpenConns.WithLabelValues(service).Set(float64(stats.OpenConnections))
	m.dbInUseConns.WithLabelValues(service).Set(float64(stats.InUse))
	m.dbIdleConns.WithLabelValues(service).Set(float64(stats.Idle))
	m.dbWaitCountTotal.WithLabelValues(service).Set(float64(stats.WaitCount))
}

// IncAppointmentCreated увеличивает счетчик созданных записей
func (m *Metrics) IncAppointmentCreated(origin string) {
	m.appointmentsCreated.WithLabelValues(origin).Inc()
}

// IncBotMessage увеличивает счетчик обработанных сообщений бота
func (m *Metrics) IncBotMessage(state, outcome string) {
	m.botMessagesTotal.WithLabelValues(state, outcome).Inc()
}

// IncSideEffectFailure увеличивает счетчик неудачных побочных эффектов
func (m *Metrics) IncSideEffectFailure(operation string) {
	m.sideEffectFailures.WithLabelValues(operation).Inc()
}

// AddConversationsExpired увеличивает счетчик истекших диалогов
func (m *Metrics) AddConversationsExpired(n int64) {
	m.conversationsExpired.Add(float64(n))
}
