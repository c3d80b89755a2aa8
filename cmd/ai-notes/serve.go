package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"ai-notes-backend/internal/api"
	"ai-notes-backend/internal/api/routes"
	v1 "ai-notes-backend/internal/api/routes/v1"
	"ai-notes-backend/internal/assistant"
	"ai-notes-backend/internal/auth"
	"ai-notes-backend/internal/cache"
	"ai-notes-backend/internal/config"
	"ai-notes-backend/internal/libraries"
	llmHandlers "ai-notes-backend/internal/llm_handlers"
	"ai-notes-backend/internal/notes"
	"ai-notes-backend/internal/repo"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := config.NewLogger(cfg.Log)

		db, err := config.ConnectDB(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer config.CloseDB(db)

		return config.MigrateAllModels(db, true, log)
	},
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.Log)

	// Connect to database
	db, err := config.ConnectDB(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer config.CloseDB(db)

	if err := config.MigrateAllModels(db, cfg.Database.AutoMigrate, log); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	llmClient, err := llmHandlers.NewLLMClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}

	listings := cache.NewNoteListCache(cfg.Notes.ListCacheSize, cfg.Notes.ListCacheTTL, cfg.Notes.SearchThreshold)
	noteService := notes.NewService(repo.NewNoteRepository(db), listings, log)
	gateway := auth.NewGateway(repo.NewUserRepository(db), repo.NewSessionRepository(db), cfg.Auth, log)
	hub := libraries.NewHub(log)

	// Create and configure Fiber app
	app := api.NewServer(cfg.Server, log)
	routes.Register(app, v1.Dependencies{
		Config: cfg,
		Log:    log,
		DB:     sqlDB,
		Auth:   gateway,
		Notes:  noteService,
		Agent:  assistant.NewAgent(llmClient, noteService, log),
		Hub:    hub,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return api.StartServer(app, cfg.Server, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		if err := api.Shutdown(app, cfg.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
