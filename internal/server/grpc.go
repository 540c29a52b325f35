package server

import (
	"context"
	"time"

	"gochat/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer serves the standard health service and reflection for
// load balancers and orchestrators.
func NewGRPCServer(hs *health.Server) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingUnaryInterceptor))
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)
	return s
}

// WatchHealth mirrors the store's reachability into hs until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, store Pinger, interval time.Duration) {
	update := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("store ping failed", "error", err)
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}

func loggingUnaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		logger.Warn("grpc call failed", "method", info.FullMethod, "duration", time.Since(start).String(), "error", err)
	} else {
		logger.Debug("grpc call", "method", info.FullMethod, "duration", time.Since(start).String())
	}
	return resp, err
}
