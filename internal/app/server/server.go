package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"uren/internal/domain/roster"
	"uren/internal/platform/config"
	"uren/internal/platform/db"
	"uren/internal/platform/logging"
	"uren/internal/platform/metrics"
	calchandler "uren/internal/transport/http/handlers/calc"
	entryhandler "uren/internal/transport/http/handlers/entries"
	profilehandler "uren/internal/transport/http/handlers/profiles"
	reporthandler "uren/internal/transport/http/handlers/reports"
	"uren/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Pool   *pgxpool.Pool
	Router http.Handler
}

// New connects the pool, applies migrations and seed data per config, and
// assembles the router. Callers own Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, Pool: pool}
	app.Router = app.buildRouter(roster.NewStore(pool))
	return app, nil
}

func (a *App) buildRouter(store roster.StoreAPI) http.Handler {
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recover)
	if a.Config.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   a.Config.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))
		r.Use(middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute))

		profilehandler.NewHandler(store).RegisterRoutes(r)
		entryhandler.NewHandler(store).RegisterRoutes(r)
		calchandler.NewHandler(store).RegisterRoutes(r)
		reporthandler.NewHandler(store).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: a.Config.FrontendDir, indexPath: "index.html"})

	return router
}

func (a *App) Close() {
	a.Pool.Close()
}

// Run is the cmd/server entrypoint: config, logging, app wiring, listen.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	app, err := New(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	if _, err := os.Stat(path); err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	} else if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
