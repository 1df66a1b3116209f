// Package metrics records RPC and ledger metrics with Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/circlewallet/internal/calculator"
	"github.com/mmynk/circlewallet/internal/ledger"
	"github.com/mmynk/circlewallet/internal/models"
)

const namespace = "circlewallet"

// Ensure Metrics can be registered as a ledger observer.
var _ ledger.Observer = (*Metrics)(nil)

// Metrics holds every collector the server exports.
type Metrics struct {
	registry *prometheus.Registry

	// RPC metrics
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	SettlementsCommitted *prometheus.CounterVec
	SettledAmount        *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),

		TransactionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_recorded_total",
			Help:      "Transactions written, by type.",
		}, []string{"type"}),
		SettlementsCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_committed_total",
			Help:      "Events closed through a settlement, by mode.",
		}, []string{"mode"}),
		SettledAmount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_surplus_abs",
			Help:      "Absolute surplus or deficit of settled events.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}, []string{"mode"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RPCRequests,
		m.RPCDuration,
		m.TransactionsRecorded,
		m.SettlementsCommitted,
		m.SettledAmount,
	)
	return m
}

// Registry exposes the registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TransactionRecorded implements ledger.Observer.
func (m *Metrics) TransactionRecorded(t *models.Transaction) {
	m.TransactionsRecorded.WithLabelValues(string(t.Type)).Inc()
}

// SettlementCommitted implements ledger.Observer.
func (m *Metrics) SettlementCommitted(event *models.Event, plan *calculator.Plan) {
	mode := "unknown"
	if event.Settlement != nil {
		mode = string(event.Settlement.Mode)
	}
	m.SettlementsCommitted.WithLabelValues(mode).Inc()

	surplus := plan.Surplus
	if surplus < 0 {
		surplus = -surplus
	}
	m.SettledAmount.WithLabelValues(mode).Observe(float64(surplus))
}

// Interceptor counts and times every RPC, unary and streaming.
func (m *Metrics) Interceptor() connect.Interceptor {
	return &rpcInterceptor{m: m}
}

type rpcInterceptor struct {
	m *Metrics
}

func (i *rpcInterceptor) observe(procedure string, start time.Time, err error) {
	code := "ok"
	if err != nil {
		code = connect.CodeOf(err).String()
		if errors.Is(err, context.Canceled) {
			code = connect.CodeCanceled.String()
		}
	}
	i.m.RPCRequests.WithLabelValues(procedure, code).Inc()
	i.m.RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
}

func (i *rpcInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		i.observe(req.Spec().Procedure, start, err)
		return resp, err
	}
}

func (i *rpcInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *rpcInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		err := next(ctx, conn)
		i.observe(conn.Spec().Procedure, start, err)
		return err
	}
}
