package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifedash/internal/admin"
	"lifedash/internal/catalog"
	commandhandler "lifedash/internal/command/handler"
	"lifedash/internal/platform/config"
	"lifedash/internal/platform/httpserver"
	"lifedash/internal/platform/logger"
	"lifedash/internal/platform/metrics"
	"lifedash/pkg/platform/httputil"
	adminmw "lifedash/pkg/platform/middleware/admin"
	authmw "lifedash/pkg/platform/middleware/auth"
	"lifedash/pkg/platform/middleware/metadata"
	request "lifedash/pkg/platform/middleware/request"
	"lifedash/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, cat, log)
	if err != nil {
		return err
	}
	defer a.close(log)

	srv := httpserver.New(cfg.Server, router(cfg, cat, a, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting lifedash",
			"addr", cfg.Server.Addr,
			"language", cfg.Language.Backend,
			"storage", cfg.Storage.Backend,
			"audit", cfg.Audit.Backend,
			"events", a.producer != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func router(cfg *config.Config, cat *catalog.Catalog, a *app, log *slog.Logger) http.Handler {
	httpMetrics := metrics.New()

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Trace)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log, httpMetrics))

	r.Get("/health", a.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		r.Use(request.MaxBody(cfg.Server.MaxBodyBytes))
		r.Use(request.RequireJSON)
		if a.tokens != nil {
			if cfg.Auth.Required {
				r.Use(authmw.RequireAuth(a.tokens, log))
			} else {
				r.Use(authmw.OptionalAuth(a.tokens, log))
			}
		}
		if a.limiter != nil {
			r.Use(a.limiter.Limit)
		}
		commandhandler.New(a.commands, cat, log).Register(r)
	})

	if cfg.Admin.Token != "" {
		r.Group(func(r chi.Router) {
			r.Use(request.Timeout(cfg.Server.RequestTimeout))
			r.Use(adminmw.RequireAdminToken(cfg.Admin.Token, log))
			admin.New(a.auditStore, a.entries, cat, log).Register(r)
		})
	}
	return r
}

// health reports dependency reachability. Each probe gets a short budget.
func (a *app) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, probe := range a.probes {
		if err := probe(ctx); err != nil {
			status[name] = "unavailable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	httputil.WriteJSON(w, code, status)
}
