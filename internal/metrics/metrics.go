package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchpay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentLinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchpay_payment_links_total",
			Help: "Total number of payment links issued",
		},
	)

	IPNResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpay_ipn_results_total",
			Help: "IPN acknowledgements by gateway response code",
		},
		[]string{"rsp_code"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpay_settlements_total",
			Help: "Settled ledger entries by final status",
		},
		[]string{"status"},
	)

	EntitlementFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchpay_entitlement_failures_total",
			Help: "Entitlement activations that failed after ledger commit",
		},
	)

	StaleLinksCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchpay_stale_links_cancelled_total",
			Help: "PENDING ledger entries swept to CANCELLED",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpay_notifications_total",
			Help: "Total number of notifications processed",
		},
		[]string{"status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchpay_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPaymentLink() {
	PaymentLinksTotal.Inc()
}

func RecordIPNResult(rspCode string) {
	IPNResultsTotal.WithLabelValues(rspCode).Inc()
}

func RecordSettlement(status string) {
	SettlementsTotal.WithLabelValues(status).Inc()
}

func RecordEntitlementFailure() {
	EntitlementFailuresTotal.Inc()
}

func RecordStaleLinksCancelled(n int64) {
	StaleLinksCancelledTotal.Add(float64(n))
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}
