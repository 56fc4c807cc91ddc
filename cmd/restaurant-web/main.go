package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"restaurant-web/internal/clients/backend"
	"restaurant-web/internal/config"
	"restaurant-web/internal/http-server/handlers/adminauth"
	"restaurant-web/internal/http-server/handlers/adminpanel"
	"restaurant-web/internal/http-server/handlers/bookvenue"
	"restaurant-web/internal/http-server/handlers/dashboard"
	"restaurant-web/internal/http-server/handlers/home"
	"restaurant-web/internal/http-server/handlers/login"
	"restaurant-web/internal/http-server/handlers/logout"
	"restaurant-web/internal/http-server/handlers/menu"
	"restaurant-web/internal/http-server/handlers/placeorder"
	"restaurant-web/internal/http-server/handlers/profile"
	"restaurant-web/internal/http-server/handlers/verify"
	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/session"
	"restaurant-web/internal/storage/redis"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/local.yaml")
	log := setupLogger(cfg.Env)

	log.Info("starting restaurant web app", slog.String("env", cfg.Env))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// * Redis (pending OTP verifications)
	pendingRepo, err := redis.New(ctx, cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PendingTTL)
	if err != nil {
		log.Error("failed to connect to redis", sl.Err(err))
		os.Exit(1)
	}
	defer pendingRepo.Close()

	// * Backend clients: restricted for user traffic, privileged for admin
	client := backend.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout)
	adminClient := backend.New(cfg.Backend.URL, cfg.Backend.ServiceKey, cfg.Backend.Timeout)

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)

	renderer, err := views.New()
	if err != nil {
		log.Error("failed to parse templates", sl.Err(err))
		os.Exit(1)
	}

	// * Routing
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// public
	r.Get("/", home.New(sessions, renderer))
	r.Get("/menu", menu.New(log, sessions, client, renderer))
	r.HandleFunc("/login", login.New(log, sessions, client, pendingRepo, renderer))
	r.HandleFunc("/verify", verify.New(log, sessions, client, pendingRepo, renderer))
	r.HandleFunc("/admin_login", adminauth.New(log, sessions, cfg.Admin.PasswordHash, renderer))
	r.Get("/admin_logout", adminauth.Logout(log, sessions))

	// user
	r.Group(func(r chi.Router) {
		r.Use(authguard.RequireUser(log, sessions, client))

		r.Get("/logout", logout.New(log, sessions))
		r.Get("/dashboard", dashboard.New(log, sessions, renderer))
		r.HandleFunc("/profile", profile.New(log, sessions, renderer))
		r.Post("/order", placeorder.New(log, sessions))
		r.Post("/book", bookvenue.New(log, sessions))
	})

	// admin
	r.Group(func(r chi.Router) {
		r.Use(authguard.RequireAdmin(log, sessions))

		r.Get("/admin", adminpanel.Dashboard(log, sessions, adminClient, renderer))
		r.Get("/admin/users", adminpanel.Users(log, sessions, adminClient, renderer))
		r.Get("/admin/orders", adminpanel.Orders(log, sessions, adminClient, renderer))
		r.Get("/admin/bookings", adminpanel.Bookings(log, sessions, adminClient, renderer))
		r.Post("/admin/orders/update/{id}", adminpanel.UpdateOrderStatus(log, sessions, adminClient))
		r.Post("/admin/bookings/update/{id}", adminpanel.UpdateBookingStatus(log, sessions, adminClient))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("HTTP server starting", slog.String("addr", cfg.HTTPServer.Address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", sl.Err(err))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
