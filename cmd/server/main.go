// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mlandis/boardwalk/internal/cache"
	"github.com/mlandis/boardwalk/internal/database"
	"github.com/mlandis/boardwalk/internal/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using process environment")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Persistence and the historian are best-effort at boot: the service
	// can run games in memory while operators fix the backends.
	if err := database.ConnectDB(ctx); err != nil {
		logrus.WithError(err).Warn("database unavailable, persistence disabled")
	} else if err := database.Migrate(ctx); err != nil {
		logrus.WithError(err).Fatal("database migration failed")
	}
	if err := cache.InitRedis(ctx); err != nil {
		logrus.WithError(err).Warn("redis unavailable, action history disabled")
	}

	srv := handlers.NewServer()
	mux := http.NewServeMux()
	srv.Routes(mux)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", addr).Info("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if database.DB != nil {
		database.DB.Close()
	}
	if cache.Rdb != nil {
		_ = cache.Rdb.Close()
	}
}
