package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gochat/internal/logger"
	"gochat/internal/server"
	"gochat/internal/wire"
)

func main() {
	cfg, err := wire.ProvideConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting chat service", "environment", cfg.Server.Environment, "store", cfg.Store.Driver)

	app, cleanup, err := wire.InitializeApplication(cfg)
	if err != nil {
		logger.Fatal("failed to initialize application", err)
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:         app.Config.HTTPAddr(),
		Handler:      app.Router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	grpcServer := server.NewGRPCServer(app.Health)
	lis, err := net.Listen("tcp", ":"+app.Config.Server.GRPCPort)
	if err != nil {
		logger.Fatal("failed to listen on grpc port", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go server.WatchHealth(ctx, app.Health, app.Stores, 10*time.Second)

	go func() {
		logger.Info("grpc health server listening", "port", app.Config.Server.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "error", err)
		}
	}()

	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down chat service")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(app.Config.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("chat service stopped")
}
