//	@title			Soqotra Rock Art API
//	@version		1.0
//	@description	Catalog backend for the Soqotra rock art database: records, images, map feeds, and exports.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/enzococca/soqotra-rockart/internal/auth"
	"github.com/enzococca/soqotra-rockart/internal/config"
	"github.com/enzococca/soqotra-rockart/internal/db"
	"github.com/enzococca/soqotra-rockart/internal/export"
	"github.com/enzococca/soqotra-rockart/internal/image"
	appMiddleware "github.com/enzococca/soqotra-rockart/internal/middleware"
	"github.com/enzococca/soqotra-rockart/internal/record"
	"github.com/enzococca/soqotra-rockart/internal/storage"
	"github.com/enzococca/soqotra-rockart/internal/user"
	"github.com/enzococca/soqotra-rockart/pkg/logger"

	_ "github.com/enzococca/soqotra-rockart/docs/swagger"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, zlog); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}

	backend, err := storage.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("storage init failed", zap.Error(err))
	}
	zlog.Info("storage backend ready", zap.String("backend", backend.Tag()))

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(userSvc, cfg)
	authHandler := auth.NewHandler(authSvc)

	gateway := image.NewGateway(cfg, backend, zlog)
	imageRepo := image.NewRepository(pool)
	imageSvc := image.NewService(gateway, imageRepo, zlog)
	imageHandler := image.NewHandler(imageSvc, cfg.MaxUploadBytes)

	recordRepo := record.NewRepository(pool)
	recordSvc := record.NewService(recordRepo, imageSvc, cfg.PageSize, zlog)
	recordHandler := record.NewHandler(recordSvc, cfg)

	exportHandler := export.NewHandler(recordSvc, imageSvc, cfg, zlog)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(zlog))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Locally stored uploads are served as static files. With the remote
	// backend active this mount stays harmless: links point elsewhere.
	r.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Get("/public/points", recordHandler.PublicPoints)
		r.Get("/map/config", recordHandler.MapConfig)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

			r.Get("/users/me", userHandler.GetMe)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireRole(user.RoleAdmin))
				r.Get("/users", userHandler.List)
				r.Patch("/users/{id}/approve", userHandler.Approve)
				r.Patch("/users/{id}/role", userHandler.ChangeRole)
			})

			r.Get("/records", recordHandler.List)
			r.Get("/records/geojson", recordHandler.GeoJSON)
			r.Get("/records/{id}", recordHandler.Get)
			r.Get("/stats", recordHandler.Stats)
			r.Get("/types", recordHandler.ListTypes)
			r.Get("/types/{name}", recordHandler.GetType)
			r.Get("/images/{id}", imageHandler.Get)
			r.Get("/images/{id}/url", imageHandler.VariantURL)
			r.Get("/export/excel", exportHandler.Excel)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireRole(user.RoleEditor))
				r.Post("/records", recordHandler.Create)
				r.Put("/records/{id}", recordHandler.Update)
				r.Delete("/records/{id}", recordHandler.Delete)
				r.Post("/records/{id}/images", imageHandler.Upload)
				r.Delete("/images/{id}", imageHandler.Delete)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zlog.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("forced shutdown", zap.Error(err))
	}

	zlog.Info("server stopped")
}
