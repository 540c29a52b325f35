// Package server assembles the HTTP router and the gRPC health endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	chathandler "gochat/internal/chat/handler"
	"gochat/internal/common"
	"gochat/internal/friend"
	"gochat/internal/gateway"
	"gochat/internal/group"
	"gochat/internal/metrics"
	"gochat/internal/ratelimit"
	"gochat/internal/user"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	User    *user.Handler
	Friend  *friend.Handler
	Chat    *chathandler.ChatHandler
	Group   *group.Handler
	Gateway *gateway.Handler
}

// NewRouter mounts every route behind logging, metrics, auth and rate limiting.
// CORS wraps the router so preflights for any path are answered.
func NewRouter(tokens *common.TokenManager, limiter *ratelimit.Limiter, store Pinger, h Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(common.LoggingMiddleware, metrics.Middleware, common.AuthMiddleware(tokens), limiter.Middleware)

	r.HandleFunc("/health", healthHandler(store)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	h.User.RegisterRoutes(r)
	h.Friend.RegisterRoutes(r)
	h.Chat.RegisterRoutes(r)
	h.Group.RegisterRoutes(r)
	h.Gateway.RegisterRoutes(r)

	return common.CORSMiddleware(r)
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			common.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
