package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "clavis/internal/auth/handler"
	authmetrics "clavis/internal/auth/metrics"
	"clavis/internal/auth/password"
	authservice "clavis/internal/auth/service"
	"clavis/internal/auth/token"
	"clavis/internal/platform/config"
	"clavis/internal/platform/database"
	"clavis/internal/platform/health"
	"clavis/internal/platform/logger"
	"clavis/internal/platform/middleware"
	tenanthandler "clavis/internal/tenant/handler"
	tenantservice "clavis/internal/tenant/service"
	tenantstore "clavis/internal/tenant/store"
	userhandler "clavis/internal/user/handler"
	userservice "clavis/internal/user/service"
	userstore "clavis/internal/user/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing clavis",
		"addr", cfg.Addr,
		"token_algorithm", cfg.TokenAlgorithm,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(ctx, database.DefaultConfig(cfg.DatabaseURL))
	cancel()
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	var (
		users       authservice.UserStore
		usersMgmt   userservice.UserStore
		usersTenant tenantservice.UserStore
		tenants     tenantservice.TenantStore
	)
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		pg := userstore.NewPostgresUserStore(db)
		users, usersMgmt, usersTenant = pg, pg, pg
		tenants = tenantstore.NewPostgresTenantStore(db)
		log.Info("using postgres stores")
	} else {
		mem := userstore.NewInMemoryUserStore()
		users, usersMgmt, usersTenant = mem, mem, mem
		tenants = tenantstore.NewInMemoryTenantStore()
		log.Warn("no DATABASE_URL configured, using in-memory stores")
	}

	codec, err := token.New(token.Config{
		Algorithm:     cfg.TokenAlgorithm,
		Secret:        cfg.SigningSecret,
		PrivateKeyPEM: mustReadKeyFile(log, cfg.SigningKeyFile),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		log.Error("token codec initialization failed", "error", err)
		os.Exit(1)
	}
	hasher := password.New(cfg.BcryptCost)

	authSvc := authservice.NewService(users, tenants, codec, hasher,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New()),
	)
	userSvc := userservice.NewService(usersMgmt, tenants, hasher,
		userservice.WithLogger(log),
	)
	tenantSvc := tenantservice.NewService(tenants, usersTenant,
		tenantservice.WithLogger(log),
	)

	router := newRouter(log, db, authSvc, userSvc, tenantSvc)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("database close failed", "error", err)
		}
	}

	log.Info("server stopped")
}

// newRouter wires all endpoints with middleware. Authentication routes are
// public; user and tenant management sit behind RequireAuth.
func newRouter(log *slog.Logger, db *sql.DB, authSvc *authservice.Service, userSvc *userservice.Service, tenantSvc *tenantservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	healthHandler := health.New()
	if db != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		})
	}
	healthHandler.Register(r)

	r.Handle("/metrics", promhttp.Handler())

	authH := authhandler.New(authSvc, log)
	userH := userhandler.New(userSvc, log)
	tenantH := tenanthandler.New(tenantSvc, log)

	r.Route("/api/v1", func(api chi.Router) {
		authH.Register(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(authSvc, log))
			authH.RegisterProtected(protected)
			userH.Register(protected)
			tenantH.Register(protected)
		})
	})

	return r
}

func mustReadKeyFile(log *slog.Logger, path string) []byte {
	if path == "" {
		return nil
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		log.Error("reading signing key file failed", "error", err, "path", path)
		os.Exit(1)
	}
	return pem
}
