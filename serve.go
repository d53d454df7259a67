package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CrowderSoup/taskboard/config"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/handlers"
	"github.com/CrowderSoup/taskboard/services"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg, opts.logger)
		},
	}
}

// app is everything serve wires together.
type app struct {
	store  *database.Store
	hub    *services.Hub
	server *http.Server
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errMissingSecret
	}

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	hub := services.NewHub(logger)
	authService := services.NewAuthService(cfg.Auth.JWTSecret)
	mutator := database.NewMutator(store,
		database.WithInvalidator(hub),
		database.WithLogger(logger),
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		Data:           handlers.NewDataHandler(mutator, store, hub, logger),
		Auth:           handlers.NewAuthHandler(authService),
		Middleware:     handlers.NewAuthMiddleware(authService),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	return &app{
		store: store,
		hub:   hub,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.store.Close()

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.hub.Run(hubCtx)

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", a.server.Addr, "database", cfg.Database.Path)
		errc <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
