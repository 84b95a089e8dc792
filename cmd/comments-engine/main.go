package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/news-portal-comments/internal/config"
	"github.com/pribylovaa/news-portal-comments/internal/gateway/rest"
	gwhttp "github.com/pribylovaa/news-portal-comments/internal/http"
	"github.com/pribylovaa/news-portal-comments/internal/metrics"
	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/session"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting comments-engine", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	backend, err := rest.New(rest.Options{
		BaseURL:   cfg.Backend.BaseURL,
		UserAgent: cfg.Backend.UserAgent,
		Timeout:   cfg.Timeouts.Backend,
		Logger:    log,
		Metrics:   m,
	})
	if err != nil {
		log.Error("backend_client_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("backend_client_initialized", slog.String("base_url", cfg.Backend.BaseURL))

	registry := session.New(backend, session.Options{
		IdleTTL:       cfg.Sessions.IdleTTL,
		SweepInterval: cfg.Sessions.SweepInterval,
		MaxStores:     cfg.Sessions.MaxStores,
		DefaultSort:   models.SortKey(cfg.Thread.DefaultSort),
		Metrics:       m,
		Logger:        log,
	})
	go registry.Run(rootCtx)

	apiHandler := gwhttp.NewRouter(registry, gwhttp.Options{
		Logger:   log,
		Metrics:  m,
		Timeout:  cfg.Timeouts.Service,
		BasePath: "",
	})

	p := &probes{}

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           p.mux(apiHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	p.ready.Store(true)
	log.Info("engine_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	p.ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped", slog.Int("sessions", registry.Len()))
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
