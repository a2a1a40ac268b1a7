// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_checkouts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	paymentVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_payment_verifications_total",
			Help: "Payment verifications by outcome",
		},
		[]string{"outcome"},
	)

	shipmentBookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_shipment_bookings_total",
			Help: "Shipment booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_webhooks_total",
			Help: "Inbound provider webhooks by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	refundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_refunds_total",
			Help: "Refund workflow transitions",
		},
		[]string{"status"},
	)

	providerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_provider_call_duration_seconds",
			Help:    "Latency of outbound payment and logistics provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation", "outcome"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fulfillment_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	outboxPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_outbox_published_total",
			Help: "Outbox events relayed by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		checkoutsTotal,
		paymentVerificationsTotal,
		shipmentBookingsTotal,
		webhooksTotal,
		refundsTotal,
		providerCallDuration,
		breakerState,
		outboxPublishedTotal,
	)
}

func RecordCheckout(outcome string)            { checkoutsTotal.WithLabelValues(outcome).Inc() }
func RecordPaymentVerification(outcome string) { paymentVerificationsTotal.WithLabelValues(outcome).Inc() }
func RecordShipmentBooking(outcome string)     { shipmentBookingsTotal.WithLabelValues(outcome).Inc() }
func RecordWebhook(channel, outcome string)    { webhooksTotal.WithLabelValues(channel, outcome).Inc() }
func RecordRefund(status string)               { refundsTotal.WithLabelValues(status).Inc() }
func RecordOutboxPublished(outcome string)     { outboxPublishedTotal.WithLabelValues(outcome).Inc() }
func SetBreakerState(name string, state int)   { breakerState.WithLabelValues(name).Set(float64(state)) }

func ObserveProviderCall(provider, operation, outcome string, seconds float64) {
	providerCallDuration.WithLabelValues(provider, operation, outcome).Observe(seconds)
}
