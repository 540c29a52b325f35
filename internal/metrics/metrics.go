package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gochat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gochat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gochat_users_registered_total",
			Help: "Total users registered",
		},
	)

	FriendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gochat_friend_requests_total",
			Help: "Friend request transitions",
		},
		[]string{"outcome"}, // sent, accepted, rejected
	)

	ConversationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gochat_conversations_created_total",
			Help: "Conversations created on first contact",
		},
	)

	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gochat_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"kind"}, // direct, group
	)

	GroupsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gochat_groups_created_total",
			Help: "Total groups created",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gochat_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)
