// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/avolkau/minipress/internal/config"
	"github.com/avolkau/minipress/internal/handler"
	"github.com/avolkau/minipress/internal/logging"
	"github.com/avolkau/minipress/internal/maintenance"
	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/session"
	"github.com/avolkau/minipress/internal/store"
	"github.com/avolkau/minipress/internal/version"
	"github.com/avolkau/minipress/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "MiniPress - a small blog engine\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINIPRESS_DB_PATH           SQLite database path (default: ./data/minipress.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINIPRESS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINIPRESS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINIPRESS_DO_SEED           Seed initial data on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("minipress %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Nightly event log pruning
	scheduler := maintenance.New(db, logger, cfg.EventRetentionDays)
	scheduler.Start()
	defer scheduler.Stop()

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.MethodOverride)

	csrfMiddleware := middleware.CSRF(sessionManager)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// Handlers
	publicHandler := handler.NewPublicHandler(db, renderer)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	profileHandler := handler.NewProfileHandler(db, renderer)
	engagementHandler := handler.NewEngagementHandler(db, renderer)
	commentsHandler := handler.NewCommentsHandler(db, renderer)
	adminHandler := handler.NewAdminHandler(db, renderer)
	usersHandler := handler.NewUsersHandler(db, renderer)
	postsHandler := handler.NewPostsHandler(db, renderer)
	moderationHandler := handler.NewModerationHandler(db, renderer)
	messagesHandler := handler.NewMessagesHandler(db, renderer)
	healthHandler := handler.NewHealthHandler(db, sessionManager)

	// Health check (public, more detail for staff sessions)
	r.Get(handler.RouteHealth, healthHandler.Health)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))
		r.Use(csrfMiddleware)

		r.Get(handler.RouteRoot, publicHandler.Home)
		r.Get(handler.RoutePostsSlug, publicHandler.PostShow)
		r.Get(handler.RouteContact, publicHandler.ContactForm)
		r.Post(handler.RouteContact, publicHandler.ContactSubmit)

		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Routes that require a logged-in user
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(csrfMiddleware)

		r.Get(handler.RouteProfile, profileHandler.Show)
		r.Post(handler.RouteProfile, profileHandler.Update)
		r.Post(handler.RouteProfilePassword, profileHandler.ChangePassword)

		r.Post(handler.RoutePostLike, engagementHandler.Like)
		r.Post(handler.RoutePostUnlike, engagementHandler.Unlike)
		r.Post(handler.RoutePostFavorite, engagementHandler.Favorite)
		r.Post(handler.RoutePostUnfavorite, engagementHandler.Unfavorite)

		r.Post(handler.RoutePostComments, commentsHandler.Create)
		r.Delete(handler.RouteCommentsID, commentsHandler.Delete)
	})

	// Admin routes (staff only, user management admin only)
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(csrfMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff())

			r.Get(handler.RouteRoot, adminHandler.Dashboard)

			r.Get(handler.RoutePosts, postsHandler.List)
			r.Get(handler.RoutePosts+handler.RouteSuffixNew, postsHandler.NewForm)
			r.Post(handler.RoutePosts, postsHandler.Create)
			r.Get(handler.RoutePostsID, postsHandler.EditForm)
			r.Put(handler.RoutePostsID, postsHandler.Update)
			r.Post(handler.RoutePostsID, postsHandler.Update) // HTML forms can't send PUT
			r.Delete(handler.RoutePostsID, postsHandler.Delete)
			r.Post(handler.RoutePostsPublish, postsHandler.Publish)
			r.Post(handler.RoutePostsUnpublish, postsHandler.Unpublish)

			r.Get(handler.RouteComments, moderationHandler.List)
			r.Post(handler.RouteCommentsApprove, moderationHandler.Approve)
			r.Delete(handler.RouteComments+handler.RouteParamID, moderationHandler.Delete)

			r.Get(handler.RouteMessages, messagesHandler.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Get(handler.RouteUsers, usersHandler.List)
			r.Get(handler.RouteUsersID, usersHandler.EditForm)
			r.Put(handler.RouteUsersID, usersHandler.Update)
			r.Post(handler.RouteUsersID, usersHandler.Update) // HTML forms can't send PUT
			r.Delete(handler.RouteUsersID, usersHandler.Delete)
		})
	})

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
