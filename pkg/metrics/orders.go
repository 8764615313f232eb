package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order lifecycle events.
type OrderMetrics struct {
	events   *prometheus.CounterVec
	archived prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "events_total",
		Help:      "Order writes by kind (out, modify, delete).",
	}, []string{"kind"})
	archived := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "archived_total",
		Help:      "Orders flagged archived by the monthly recompute.",
	})
	reg.MustRegister(events, archived)
	return &OrderMetrics{events: events, archived: archived}
}

// IncEvent counts one order write of the given kind.
func (m *OrderMetrics) IncEvent(kind string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(kind)).Inc()
}

// AddArchived counts orders newly flagged archived.
func (m *OrderMetrics) AddArchived(n int64) {
	if m == nil || m.archived == nil || n <= 0 {
		return
	}
	m.archived.Add(float64(n))
}
