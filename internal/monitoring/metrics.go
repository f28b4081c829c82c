package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Decision metrics
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_core_decisions_total",
			Help: "Total number of fused trading decisions",
		},
		[]string{"symbol", "action"},
	)

	decisionConfidence = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trade_core_decision_confidence",
			Help: "Confidence of the latest decision per symbol",
		},
		[]string{"symbol"},
	)

	// Risk metrics
	riskLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trade_core_risk_level",
			Help: "Latest aggregate risk level per symbol (0=safe 1=warning 2=critical)",
		},
		[]string{"symbol"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_core_risk_rejections_total",
			Help: "Total number of trades rejected by the risk gate",
		},
		[]string{"symbol"},
	)

	// Execution metrics
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_core_executions_total",
			Help: "Total number of execution hand-offs",
		},
		[]string{"symbol", "status"},
	)

	// Workflow metrics
	orchestrationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trade_core_orchestration_duration_ms",
			Help:    "Wall time of one orchestration call in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(decisionConfidence)
	prometheus.MustRegister(riskLevel)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(executionsTotal)
	prometheus.MustRegister(orchestrationDuration)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordDecision records a fused decision
func RecordDecision(symbol, action string, confidence float64) {
	decisionsTotal.WithLabelValues(symbol, action).Inc()
	decisionConfidence.WithLabelValues(symbol).Set(confidence)
}

// RecordRiskLevel records the aggregate risk level for a symbol
func RecordRiskLevel(symbol, level string) {
	value := 0.0
	switch level {
	case "WARNING":
		value = 1.0
	case "CRITICAL":
		value = 2.0
	}
	riskLevel.WithLabelValues(symbol).Set(value)
}

// RecordRejection records a risk gate rejection
func RecordRejection(symbol string) {
	rejectionsTotal.WithLabelValues(symbol).Inc()
}

// RecordExecution records an execution hand-off result
func RecordExecution(symbol string, success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	executionsTotal.WithLabelValues(symbol, status).Inc()
}

// RecordOrchestration records one completed orchestration call
func RecordOrchestration(outcome string, elapsedMS float64) {
	orchestrationDuration.WithLabelValues(outcome).Observe(elapsedMS)
}
