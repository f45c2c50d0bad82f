package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Orders stored, partitioned by cleaning type and whether a calculator selection came along
	ordersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleaning_orders",
			Subsystem: "order",
			Name:      "submitted_total",
			Help:      "Total number of orders accepted",
		},
		[]string{"cleaning_type", "source"},
	)

	// Quote emails, partitioned by result
	quoteSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleaning_orders",
			Subsystem: "order",
			Name:      "quote_sends_total",
			Help:      "Total number of quote documents sent to customers",
		},
		[]string{"result"},
	)

	// Status writes, partitioned by source and target status
	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleaning_orders",
			Subsystem: "order",
			Name:      "status_transitions_total",
			Help:      "Total number of order status writes made by admins",
		},
		[]string{"from", "to"},
	)

	// Public tracking lookups, partitioned by result
	trackingLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleaning_orders",
			Subsystem: "order",
			Name:      "tracking_lookups_total",
			Help:      "Total number of tracking page lookups",
		},
		[]string{"result"},
	)

	// Notifications, partitioned by kind and result
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleaning_orders",
			Subsystem: "notification",
			Name:      "attempts_total",
			Help:      "Total number of notifications attempted",
		},
		[]string{"kind", "result"},
	)
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
