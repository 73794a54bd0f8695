package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OracleMetrics 定义签名验证相关的业务指标，同时实现 oracle.Recorder
type OracleMetrics struct {
	AttemptsStarted  *prometheus.CounterVec
	AttemptsFinished *prometheus.CounterVec
	AttemptDuration  *prometheus.HistogramVec
	VerifyTotal      *prometheus.CounterVec
}

// Global Metrics Instance
var Business *OracleMetrics

// InitBusinessMetrics 初始化业务指标 (注册到默认 Registry)
func InitBusinessMetrics() {
	Business = NewOracleMetrics(prometheus.DefaultRegisterer)
}

func NewOracleMetrics(reg prometheus.Registerer) *OracleMetrics {
	factory := promauto.With(reg)
	return &OracleMetrics{
		AttemptsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_attempts_started_total",
			Help: "Signing attempts issued to a device session",
		}, []string{"mode"}),
		AttemptsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_attempts_finished_total",
			Help: "Signing attempts that reached a terminal state",
		}, []string{"mode", "state"}),
		AttemptDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oracle_attempt_duration_seconds",
			Help:    "Time from issuing a request to its terminal state",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		VerifyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_signature_checks_total",
			Help: "Stand-alone signature checks by result",
		}, []string{"result"}),
	}
}

func (m *OracleMetrics) AttemptStarted(mode string) {
	m.AttemptsStarted.WithLabelValues(mode).Inc()
}

func (m *OracleMetrics) AttemptFinished(mode, state string, elapsed time.Duration) {
	m.AttemptsFinished.WithLabelValues(mode, state).Inc()
	m.AttemptDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// SignatureChecked 记录 /verify 接口的结果
func (m *OracleMetrics) SignatureChecked(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.VerifyTotal.WithLabelValues(result).Inc()
}
