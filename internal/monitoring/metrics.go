package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 订阅指标
	SubscriptionsCreated *prometheus.CounterVec
	AggregatesCreated    prometheus.Counter
	StateChanges         *prometheus.CounterVec
	Resyncs              *prometheus.CounterVec
	Unsubscribes         *prometheus.CounterVec
	SubscriptionsTotal   prometheus.Gauge
	AggregatesTotal      prometheus.Gauge

	// 系统指标
	SystemUptime        prometheus.Gauge
	DatabaseConnections *prometheus.GaugeVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	// 限流指标
	RateLimitBlocks *prometheus.CounterVec
}

// NewMetrics 创建监控指标，所有指标注册到独立的注册表
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maily_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maily_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maily_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),

		SubscriptionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_subscriptions_created_total",
				Help: "Total number of sequence subscriptions created",
			},
			[]string{"kind"},
		),
		AggregatesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "maily_aggregates_created_total",
				Help: "Total number of aggregated subscriptions created",
			},
		),
		StateChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_subscription_state_changes_total",
				Help: "Total number of activate/deactivate operations",
			},
			[]string{"target", "active"},
		),
		Resyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_subscription_resyncs_total",
				Help: "Total number of subscriptions re-linked after a sequence changed group",
			},
			[]string{"direction"},
		),
		Unsubscribes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_unsubscribes_total",
				Help: "Total number of token based unsubscribe requests",
			},
			[]string{"result"},
		),
		SubscriptionsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "maily_subscriptions",
				Help: "Current number of sequence subscriptions",
			},
		),
		AggregatesTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "maily_aggregates",
				Help: "Current number of aggregated subscriptions",
			},
		),

		SystemUptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "maily_system_uptime_seconds",
				Help: "System uptime in seconds",
			},
		),
		DatabaseConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "maily_database_connections",
				Help: "Number of database connections",
			},
			[]string{"state"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),
		PanicsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "maily_panics_total",
				Help: "Total number of panics",
			},
		),

		RateLimitBlocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maily_rate_limit_blocks_total",
				Help: "Total number of rate limit blocks",
			},
			[]string{"type"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordSubscriptionCreated 记录序列订阅创建
func (m *Metrics) RecordSubscriptionCreated(aggregated bool) {
	kind := "standalone"
	if aggregated {
		kind = "aggregated"
	}
	m.SubscriptionsCreated.WithLabelValues(kind).Inc()
}

// RecordAggregateCreated 记录聚合订阅创建
func (m *Metrics) RecordAggregateCreated() {
	m.AggregatesCreated.Inc()
}

// RecordStateChange 记录订阅状态变更
func (m *Metrics) RecordStateChange(target string, active bool) {
	m.StateChanges.WithLabelValues(target, strconv.FormatBool(active)).Inc()
}

// RecordResync 记录订阅因序列分组变化而重新关联
func (m *Metrics) RecordResync(direction string) {
	m.Resyncs.WithLabelValues(direction).Inc()
}

// RecordUnsubscribe 记录退订请求结果
func (m *Metrics) RecordUnsubscribe(result string) {
	m.Unsubscribes.WithLabelValues(result).Inc()
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRateLimitBlock 记录限流阻止
func (m *Metrics) RecordRateLimitBlock(limitType string) {
	m.RateLimitBlocks.WithLabelValues(limitType).Inc()
}

// UpdateSubscriptionCounts 更新订阅总数
func (m *Metrics) UpdateSubscriptionCounts(subscriptions, aggregates int64) {
	m.SubscriptionsTotal.Set(float64(subscriptions))
	m.AggregatesTotal.Set(float64(aggregates))
}

// UpdateSystemUptime 更新系统运行时间
func (m *Metrics) UpdateSystemUptime(uptime time.Duration) {
	m.SystemUptime.Set(uptime.Seconds())
}

// UpdateDatabaseConnections 更新数据库连接数
func (m *Metrics) UpdateDatabaseConnections(open, inUse int) {
	m.DatabaseConnections.WithLabelValues("open").Set(float64(open))
	m.DatabaseConnections.WithLabelValues("in_use").Set(float64(inUse))
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
