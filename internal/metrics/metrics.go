// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comments_created_total",
		Help: "Comments created, split by top-level and reply.",
	}, []string{"kind"})

	CommentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_comments_deleted_total",
		Help: "Comment records removed, cascades included.",
	})

	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_notifications_dispatched_total",
		Help: "Notification jobs processed by the dispatcher.",
	}, []string{"result"})

	NotifyQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_notify_queue_depth",
		Help: "Jobs waiting in the notification dispatcher queue.",
	})

	BadgeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_badge_cache_total",
		Help: "Unseen-badge cache lookups by outcome.",
	}, []string{"outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_events_published_total",
		Help: "Domain events handed to the publisher.",
	}, []string{"type", "result"})

	CounterDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_counter_drift_repaired_total",
		Help: "Posts whose cached comment counters were corrected by a recount.",
	}, []string{"counter"})
)
