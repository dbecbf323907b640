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

	"learnhub-web/internal/backend"
	"learnhub-web/internal/config"
	"learnhub-web/internal/domain"
	"learnhub-web/internal/handler"
	"learnhub-web/internal/middleware"
	"learnhub-web/internal/observability"
	"learnhub-web/internal/repository/postgres"
	"learnhub-web/internal/service"
	"learnhub-web/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting web server")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	courseAPI := backend.NewClient(cfg.BackendAPIURL)
	slog.Info("course API configured", slog.String("url", cfg.BackendAPIURL))

	sessionRepo, err := postgres.NewSessionRepository(db)
	if err != nil {
		slog.Error("failed to initialize session repository", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store := session.NewStore(sessionRepo, courseAPI)

	catalogService := service.NewCatalogService(courseAPI, store)
	purchaseService := service.NewPurchaseService(store, courseAPI)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startSessionCleanup(ctx, sessionRepo)
	slog.Info("session cleanup task started")

	go collectDBStats(ctx, db)

	authHandler := handler.NewAuthHandler(store)
	courseHandler := handler.NewCourseHandler(catalogService, purchaseService, store)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())
	// r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, courseAPI))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./static/login.html")
	})
	r.Get("/course/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./static/course.html")
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./static/index.html")
	})

	r.Get("/login.html", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusMovedPermanently)
	})
	r.Get("/index.html", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
	})

	// Block all other routes to prevent access to files we're not explicitly serving
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.Route("/api/v1", func(r chi.Router) {
		authLimiter := middleware.NewRateLimiter(ctx, 5, 10)
		apiLimiter := middleware.NewRateLimiter(ctx, 20, 50)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/auth/login", authHandler.Login)
		})

		// Catalog browsing works logged out; a session only adds entitlements
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(store))
			r.Use(apiLimiter.Middleware())

			r.Get("/courses", courseHandler.List)
			r.Get("/courses/{id}", courseHandler.Detail)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(store))
			r.Use(middleware.CSRF())
			r.Use(apiLimiter.Middleware())

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/courses/{id}/purchase", courseHandler.Purchase)
			r.Get("/users/courses", courseHandler.MyCourses)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("web server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()

	time.Sleep(100 * time.Millisecond)

	slog.Info("server stopped gracefully")
}

// startSessionCleanup runs a background task to delete expired sessions
func startSessionCleanup(ctx context.Context, repo domain.SessionRepository) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping session cleanup task")
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			count, err := repo.DeleteExpired(cleanupCtx)
			if err != nil {
				slog.Error("session cleanup failed", slog.String("error", err.Error()))
			} else {
				slog.Info("session cleanup completed",
					slog.Int64("sessions_deleted", count))
			}
			cancel()
		}
	}
}

// collectDBStats exports connection pool stats to prometheus
func collectDBStats(ctx context.Context, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			observability.DBConnectionsOpen.Set(float64(stats.OpenConnections))
			observability.DBConnectionsInUse.Set(float64(stats.InUse))
			observability.DBConnectionsIdle.Set(float64(stats.Idle))
		}
	}
}
