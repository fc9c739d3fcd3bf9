// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This is the composition root: the full dependency chain
//
//	sqlite.DB → repositories → services → handlers
//
// is wired here, in one place. Each layer only receives what it needs —
// services get repository interfaces, handlers get services, and nothing
// below the handlers ever sees HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/handler"
	"github.com/sakif/messagely/internal/middleware"
	sqliteRepo "github.com/sakif/messagely/internal/repository/sqlite"
	"github.com/sakif/messagely/internal/service"
)

// Config holds server configuration, loaded from the environment in
// cmd/server and passed here as a single value.
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file
	JWTSecret string // HMAC secret for token signing
}

// Server owns the router, the database connection, and the config.
// The DB is closed during graceful shutdown in Start().
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency graph assembled.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST /auth/register            → register, returns {token}
//	POST /auth/login               → login, returns {token}
//	GET  /api/users                → list users (auth)
//	GET  /api/users/{username}     → full profile (auth, self only)
//	GET  /api/users/{username}/to  → messages received (auth, self only)
//	GET  /api/users/{username}/from→ messages sent (auth, self only)
//	POST /api/messages             → send message (auth)
//	GET  /api/messages/{id}        → message detail (auth, participant only)
//	POST /api/messages/{id}/read   → mark read (auth, recipient only)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	userService := service.NewUserService(s.db.Users(), passwords, s.logger)
	messageService := service.NewMessageService(s.db.Messages(), s.logger)

	authHandler := handler.NewAuthHandler(userService, tokens, s.logger)
	userHandler := handler.NewUserHandler(userService, messageService, s.logger)
	messageHandler := handler.NewMessageHandler(messageService, s.logger)

	// Global middleware, in order: request ID → real IP → panic recovery →
	// request logging.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Browser clients live on another origin during development.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public: registration and login
	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
	})

	// Protected: everything under /api requires a valid token
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{username}", userHandler.HandleGet)
		r.Get("/users/{username}/to", userHandler.HandleMessagesTo)
		r.Get("/users/{username}/from", userHandler.HandleMessagesFrom)

		r.Post("/messages", messageHandler.HandleSend)
		r.Get("/messages/{id}", messageHandler.HandleGet)
		r.Post("/messages/{id}/read", messageHandler.HandleMarkRead)
	})

	return nil
}

// Start runs the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait (up to 30s) for in-flight requests to finish
//  3. Close the database — flushes the WAL, releases the file lock
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
