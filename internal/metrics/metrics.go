package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fastygo/adcontract/domain"
)

// Metrics holds the service collectors. It satisfies the contract use case recorder,
// the HTTP request observer and the health monitor observer.
type Metrics struct {
	ContractsCreated   *prometheus.CounterVec
	ContractRejections *prometheus.CounterVec
	ContractsCancelled prometheus.Counter
	StatusWriteBacks   *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	DependencyUp       *prometheus.GaugeVec
	BufferedOperations prometheus.Gauge
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContractsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adcontract_contracts_created_total",
			Help: "Contracts created, by initial status",
		}, []string{"status"}),
		ContractRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adcontract_contract_rejections_total",
			Help: "Contract create requests rejected, by error code",
		}, []string{"code"}),
		ContractsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "adcontract_contracts_cancelled_total",
			Help: "Contracts cancelled by users",
		}),
		StatusWriteBacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adcontract_status_writebacks_total",
			Help: "Derived statuses persisted over a stale stored value",
		}, []string{"from", "to"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adcontract_http_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adcontract_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		DependencyUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adcontract_dependency_up",
			Help: "1 when the dependency answered the last health probe",
		}, []string{"dependency"}),
		BufferedOperations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "adcontract_buffered_operations",
			Help: "Operations waiting in the local buffer for replay",
		}),
	}
}

func (m *Metrics) ContractCreated(status domain.ContractStatus) {
	m.ContractsCreated.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ContractRejected(code domain.ErrorCode) {
	m.ContractRejections.WithLabelValues(string(code)).Inc()
}

func (m *Metrics) ContractCancelled() {
	m.ContractsCancelled.Inc()
}

func (m *Metrics) StatusWrittenBack(from, to domain.ContractStatus) {
	m.StatusWriteBacks.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveDependency records the result of a health probe.
func (m *Metrics) ObserveDependency(name string, online bool) {
	v := 0.0
	if online {
		v = 1
	}
	m.DependencyUp.WithLabelValues(name).Set(v)
}

// ObserveBufferSize records the current buffer depth.
func (m *Metrics) ObserveBufferSize(n int) {
	m.BufferedOperations.Set(float64(n))
}
