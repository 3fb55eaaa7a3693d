package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome labels for SubmitMetrics.OutcomeTotal
const (
	OutcomeBroadcast = "broadcast" // fire-and-forget 成功
	OutcomeConfirmed = "confirmed"
	OutcomeReverted  = "reverted"
	OutcomeTimedOut  = "timed_out"
	OutcomeError     = "error"
)

// SubmitMetrics 定义交易提交流程的监控指标
type SubmitMetrics struct {
	BroadcastTotal      *prometheus.CounterVec
	OutcomeTotal        *prometheus.CounterVec
	ReceiptPollsTotal   prometheus.Counter
	ConfirmationSeconds prometheus.Histogram
}

// NewSubmitMetrics registers the metrics on reg. A one-shot CLI uses its own
// registry so the pushed payload only carries this run.
func NewSubmitMetrics(reg prometheus.Registerer) *SubmitMetrics {
	f := promauto.With(reg)
	return &SubmitMetrics{
		BroadcastTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rect_broadcast_total",
			Help: "eth_sendRawTransaction calls by result",
		}, []string{"result"}),
		OutcomeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rect_submission_outcome_total",
			Help: "Final outcome of each submission",
		}, []string{"outcome"}),
		ReceiptPollsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "rect_receipt_polls_total",
			Help: "eth_getTransactionReceipt calls issued while waiting for confirmation",
		}),
		ConfirmationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rect_confirmation_duration_seconds",
			Help:    "Time from broadcast until the receipt was observed",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}
}

func (m *SubmitMetrics) Broadcast(result string) {
	if m == nil {
		return
	}
	m.BroadcastTotal.WithLabelValues(result).Inc()
}

func (m *SubmitMetrics) Outcome(outcome string) {
	if m == nil {
		return
	}
	m.OutcomeTotal.WithLabelValues(outcome).Inc()
}

func (m *SubmitMetrics) Poll() {
	if m == nil {
		return
	}
	m.ReceiptPollsTotal.Inc()
}

func (m *SubmitMetrics) Confirmed(d time.Duration) {
	if m == nil {
		return
	}
	m.ConfirmationSeconds.Observe(d.Seconds())
}

// Push 把本次运行的指标推送到 Pushgateway
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	return push.New(url, job).Gatherer(g).PushContext(ctx)
}
