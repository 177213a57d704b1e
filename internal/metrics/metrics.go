package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

type (
	// Metrics holds the Prometheus collectors fed by engine events
	Metrics struct {
		registry *prometheus.Registry

		flowsStarted   *prometheus.CounterVec
		flowsCompleted *prometheus.CounterVec
		flowsCancelled *prometheus.CounterVec
		entriesAdded   *prometheus.CounterVec
		actions        *prometheus.CounterVec
		processing     *prometheus.HistogramVec
		activeFlow     prometheus.Gauge

		known   util.Set[string]
		now     func() time.Time
		mu      sync.Mutex
		running *run
	}

	// Option customizes a Metrics instance
	Option func(*Metrics)

	run struct {
		flow  api.FlowID
		start time.Time
	}
)

const (
	namespace = "askdemo"
	subsystem = "engine"

	// OtherAction labels action IDs that no registered step declares
	OtherAction = "other"
)

var processingBuckets = []float64{0.5, 1, 2, 3, 5, 10, 30}

// WithClock replaces the time source used to measure processing
func WithClock(now func() time.Time) Option {
	return func(m *Metrics) {
		m.now = now
	}
}

// WithActionIDs declares the card action IDs counted under their own
// label. Any other ID is counted as OtherAction
func WithActionIDs(ids ...string) Option {
	return func(m *Metrics) {
		for _, id := range ids {
			m.known.Add(id)
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors
func WithRuntimeCollectors() Option {
	return func(m *Metrics) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// New creates a Metrics instance with its own registry
func New(opts ...Option) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		known:    util.Set[string]{},
		now:      time.Now,

		flowsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flows_started_total",
			Help:      "Total number of flows started",
		}, []string{"flow_id"}),

		flowsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flows_completed_total",
			Help:      "Total number of flows completed",
		}, []string{"flow_id"}),

		flowsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flows_cancelled_total",
			Help:      "Total number of flows cancelled",
		}, []string{"flow_id"}),

		entriesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entries_added_total",
			Help:      "Total number of conversation entries appended",
		}, []string{"type", "card_type"}),

		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "actions_triggered_total",
			Help:      "Total number of card actions pressed",
		}, []string{"action"}),

		processing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "processing_duration_seconds",
			Help:      "Duration of simulated processing sequences",
			Buckets:   processingBuckets,
		}, []string{"flow_id"}),

		activeFlow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_flow",
			Help:      "1 while a flow is in progress",
		}),
	}

	m.registry.MustRegister(
		m.flowsStarted,
		m.flowsCompleted,
		m.flowsCancelled,
		m.entriesAdded,
		m.actions,
		m.processing,
		m.activeFlow,
	)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the registry the collectors are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Attach subscribes the collectors to the hub. The returned function
// detaches them again
func (m *Metrics) Attach(hub *events.Hub) events.Unsubscribe {
	unsubs := []events.Unsubscribe{
		events.On(hub, api.EventFlowStarted, m.flowStarted),
		events.On(hub, api.EventFlowCompleted, m.flowCompleted),
		events.On(hub, api.EventFlowCancelled, m.flowCancelled),
		events.On(hub, api.EventEntryAdded, m.entryAdded),
		events.On(hub, api.EventActionTriggered, m.actionTriggered),
		events.On(hub, api.EventProcessingStarted, m.processingStarted),
		events.On(hub, api.EventProcessingCompleted, m.processingCompleted),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (m *Metrics) flowStarted(ev api.FlowStartedEvent) {
	m.flowsStarted.WithLabelValues(string(ev.FlowID)).Inc()
	m.activeFlow.Set(1)
}

func (m *Metrics) flowCompleted(ev api.FlowCompletedEvent) {
	m.flowsCompleted.WithLabelValues(string(ev.FlowID)).Inc()
	m.activeFlow.Set(0)
}

func (m *Metrics) flowCancelled(ev api.FlowCancelledEvent) {
	m.flowsCancelled.WithLabelValues(string(ev.FlowID)).Inc()
	m.activeFlow.Set(0)

	m.mu.Lock()
	m.running = nil
	m.mu.Unlock()
}

func (m *Metrics) entryAdded(ev api.EntryAddedEvent) {
	if ev.Entry == nil {
		return
	}
	m.entriesAdded.WithLabelValues(
		string(ev.Entry.Type), string(ev.Entry.CardType),
	).Inc()
}

func (m *Metrics) actionTriggered(ev api.ActionTriggeredEvent) {
	id := ev.Action.ID
	if !m.known.Contains(id) {
		id = OtherAction
	}
	m.actions.WithLabelValues(id).Inc()
}

func (m *Metrics) processingStarted(ev api.ProcessingStartedEvent) {
	if ev.State == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = &run{flow: ev.State.FlowID, start: m.now()}
}

func (m *Metrics) processingCompleted(api.ProcessingCompletedEvent) {
	m.mu.Lock()
	r := m.running
	m.running = nil
	m.mu.Unlock()

	if r == nil {
		return
	}
	m.processing.WithLabelValues(string(r.flow)).
		Observe(m.now().Sub(r.start).Seconds())
}
