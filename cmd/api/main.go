package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/proxication/poi-api/internal/config"
	"github.com/proxication/poi-api/internal/db"
	"github.com/proxication/poi-api/internal/handlers"
	"github.com/proxication/poi-api/internal/middleware"
	"github.com/proxication/poi-api/internal/repo"
	"github.com/proxication/poi-api/internal/scheduler"
	"github.com/proxication/poi-api/internal/token"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Run(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("migrations applied")

	userRepo := repo.NewUserRepo(database)
	poiRepo := repo.NewPOIRepo(database)
	tokenRepo := repo.NewTokenRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	issuer := token.NewIssuer([]byte(cfg.JWTSecret),
		time.Duration(cfg.AccessExpireMinutes)*time.Minute,
		time.Duration(cfg.RefreshExpireHours)*time.Hour)

	authHandler := &handlers.AuthHandler{Users: userRepo, Tokens: tokenRepo, AuditRepo: auditRepo, Issuer: issuer}
	userHandler := &handlers.UserHandler{Repo: userRepo, AuditRepo: auditRepo}
	poiHandler := &handlers.POIHandler{Repo: poiRepo, AuditRepo: auditRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}

	purger, err := scheduler.Run(tokenRepo, cfg.BlacklistPurgeCron)
	if err != nil {
		log.Fatalf("Failed to start blacklist purger: %v", err)
	}
	defer purger.Stop()
	slog.Info("blacklist purger started", "cron", cfg.BlacklistPurgeCron)

	router := newRouter(authHandler, userHandler, poiHandler, auditHandler, issuer, cfg.CORSAllowedOrigins)

	slog.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}

// newRouter assembles the middleware chain and routes. Paths keep their
// original trailing-slash form via StripSlashes.
func newRouter(
	auth *handlers.AuthHandler,
	users *handlers.UserHandler,
	pois *handlers.POIHandler,
	audit *handlers.AuditHandler,
	issuer *token.Issuer,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/api/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Public: account creation and login.
	r.Post("/users/register", auth.Register)
	r.Post("/users/login", auth.Login)

	// Everything else requires a bearer access token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWT(issuer))

		r.Post("/users/logout", auth.Logout)
		r.Get("/users/user", users.Me)
		r.Put("/users/user", users.UpdateMe)
		r.Delete("/users/user", users.DeleteMe)
		r.Get("/users/users", users.ListUsers)

		r.Route("/pois", func(r chi.Router) {
			r.Get("/", pois.ListPOIs)
			r.Post("/", pois.CreatePOI)
			r.Get("/{id}", pois.GetPOI)
			r.Put("/{id}", pois.UpdatePOI)
			r.Delete("/{id}", pois.DeletePOI)
		})

		r.Get("/audit", audit.ListAudit)
	})

	return r
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
