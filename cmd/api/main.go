package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"valutatrade-hub/internal/bootstrap"
	"valutatrade-hub/internal/config"
	infraconfig "valutatrade-hub/internal/infrastructure/config"
	httpserver "valutatrade-hub/internal/infrastructure/http"
	"valutatrade-hub/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, cleanup, err := bootstrap.BuildService(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap service", zap.Error(err))
	}
	defer cleanup()

	if w := bootstrap.BuildWorker(svc, cfg); w != nil {
		go w.Start(ctx)
	}

	srv := httpserver.NewServer(svc, nil)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
