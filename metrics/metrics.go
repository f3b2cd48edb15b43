package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_engineer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_engineer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_engineer_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // "success", "invalid_credentials", "error"
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_engineer_notifications_total",
			Help: "Notification deliveries by event and result",
		},
		[]string{"event", "result"}, // "sent", "failed", "dropped"
	)

	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "site_engineer_notification_queue_depth",
			Help: "Notifications waiting for a worker",
		},
	)

	MailCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "site_engineer_mail_circuit_state",
			Help: "SMTP circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "site_engineer_websocket_clients",
			Help: "Connected websocket clients",
		},
	)

	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_engineer_workflow_transitions_total",
			Help: "Workflow state transitions by kind and outcome",
		},
		[]string{"transition", "outcome"}, // transition: "leave_approve", "leave_reject", "checkout"
	)
)

// ObserveHTTPRequest records one finished request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
