// Package metrics exposes Prometheus instruments for the ledger.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitledger/internal/models"
)

const namespace = "splitledger"

// Ledger operations counted by EntryRecorded.
const (
	OpPost = "post"
	OpEdit = "edit"
	OpVoid = "void"
)

// Metrics holds the registered collectors.
type Metrics struct {
	entries       *prometheus.CounterVec
	splitFailures *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// It panics if a collector with the same name is already registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Ledger entries written, by kind and operation.",
		}, []string{"kind", "op"}),
		splitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_failures_total",
			Help:      "Rejected splits and settlements, by reason.",
		}, []string{"reason"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Duration of unary RPCs, by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
	reg.MustRegister(m.entries, m.splitFailures, m.rpcDuration)
	return m
}

// EntryRecorded counts a successful write of an entry of kind.
func (m *Metrics) EntryRecorded(kind models.EntryKind, op string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(string(kind), op).Inc()
}

// SplitFailed counts a rejected split or settlement.
func (m *Metrics) SplitFailed(reason string) {
	if m == nil {
		return
	}
	m.splitFailures.WithLabelValues(reason).Inc()
}

// ObserveRPC records how long procedure took and how it ended.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}

// Interceptor returns a Connect interceptor timing every unary call.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			m.ObserveRPC(req.Spec().Procedure, codeOf(err), time.Since(start))
			return resp, err
		}
	}
}

func codeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
