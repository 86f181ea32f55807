package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// Domain
	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Total number of recipes created",
		},
	)

	ShoppingListDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
		[]string{"format"},
	)

	ShortLinkResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "short_link_resolutions_total",
			Help: "Total number of short link lookups",
		},
		[]string{"result"}, // "found", "not_found"
	)
)
