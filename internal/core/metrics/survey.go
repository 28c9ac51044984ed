package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// 消息处理结果
const (
	OutcomeRelayed       = "relayed"
	OutcomeAnswered      = "answered"
	OutcomeRefused       = "refused"
	OutcomeDelivered     = "delivered"
	OutcomeDuplicate     = "duplicate"
	OutcomeUntrusted     = "untrusted"
	OutcomeStale         = "stale"
	OutcomeBadSignature  = "bad_signature"
	OutcomeSurveyorLimit = "surveyor_limit"
	OutcomeRateLimited   = "rate_limited"
	OutcomeMalformed     = "malformed"
)

// 应答结果
const (
	ResultAnswer = "answer"
	ResultBad    = "bad"
)

// SurveyMetrics 调查子系统指标
type SurveyMetrics struct {
	messages     *prometheus.CounterVec
	dedupEntries prometheus.Gauge
	pending      prometheus.Gauge
	results      *prometheus.CounterVec
	bytes        prometheus.Counter
}

// NewSurveyMetrics 创建指标并注册到 reg
func NewSurveyMetrics(reg prometheus.Registerer, namespace string) (*SurveyMetrics, error) {
	m := &SurveyMetrics{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Survey messages processed, by message type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		dedupEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_entries",
			Help:      "Entries currently held in the survey dedup cache.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Survey requests awaiting an answer in the current window.",
		}),
		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "results_total",
				Help:      "Survey responses received by the surveyor, by kind.",
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "received_bytes_total",
			Help:      "Encoded survey message bytes received from peers.",
		}),
	}

	for _, c := range []prometheus.Collector{m.messages, m.dedupEntries, m.pending, m.results, m.bytes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register survey metrics: %w", err)
		}
	}
	return m, nil
}

// Message 记录一条消息的处理结果
func (m *SurveyMetrics) Message(typ types.MessageType, outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(typ.String(), outcome).Inc()
}

// SetDedupEntries 设置去重缓存条目数
func (m *SurveyMetrics) SetDedupEntries(n int) {
	if m == nil {
		return
	}
	m.dedupEntries.Set(float64(n))
}

// SetPending 设置待应答请求数
func (m *SurveyMetrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// Result 记录一条应答结果
func (m *SurveyMetrics) Result(kind string) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(kind).Inc()
}

// ReceivedBytes 记录收到的线上字节数
func (m *SurveyMetrics) ReceivedBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.Add(float64(n))
}

// Handler 返回 /metrics 处理器
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
