package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger core.
type Metrics struct {
	// Registry metrics
	ObjectsLive        prometheus.Gauge
	ObjectsCreated     prometheus.Counter
	ObjectsMutated     prometheus.Counter
	ObjectsTransferred prometheus.Counter
	ObjectsDeleted     prometheus.Counter
	VersionConflicts   prometheus.Counter

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	// Transaction metrics
	TransactionsExecuted prometheus.Counter
	TransactionsFailed   prometheus.Counter

	// Event metrics
	EventsPublished     prometheus.Counter
	EventsDropped       prometheus.Counter
	SubscriptionsActive prometheus.Gauge
}

// New creates metrics on a dedicated prometheus registry and returns both.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewWith(reg), reg
}

// NewWith creates metrics registered on the provided registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ObjectsLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lagoon_objects_live",
			Help: "Number of live objects in the registry",
		}),
		ObjectsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_objects_created_total",
			Help: "Total objects created",
		}),
		ObjectsMutated: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_objects_mutated_total",
			Help: "Total successful object mutations",
		}),
		ObjectsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_objects_transferred_total",
			Help: "Total ownership transfers",
		}),
		ObjectsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_objects_deleted_total",
			Help: "Total objects deleted",
		}),
		VersionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_version_conflicts_total",
			Help: "Mutations rejected by the optimistic version check",
		}),
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lagoon_provider_calls_total",
			Help: "Provider operations invoked",
		}, []string{"operation"}),
		ProviderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lagoon_provider_errors_total",
			Help: "Provider operations that returned an error",
		}, []string{"operation"}),
		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lagoon_provider_duration_seconds",
			Help:    "Provider operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		TransactionsExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_transactions_executed_total",
			Help: "Total transactions committed",
		}),
		TransactionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_transactions_failed_total",
			Help: "Total transactions that failed execution",
		}),
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_events_published_total",
			Help: "Total events published to the bus",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "lagoon_events_dropped_total",
			Help: "Events dropped because a subscriber buffer was full",
		}),
		SubscriptionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lagoon_subscriptions_active",
			Help: "Number of live event subscriptions",
		}),
	}
}

// ObserveProviderCall records one provider operation invocation.
func (m *Metrics) ObserveProviderCall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(operation).Inc()
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.ProviderErrors.WithLabelValues(operation).Inc()
	}
}
