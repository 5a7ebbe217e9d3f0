package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nothivault/internal/vault/api"
	"nothivault/internal/vault/config"
	"nothivault/internal/vault/folder"
	"nothivault/internal/vault/service"
	"nothivault/internal/vault/store"
	"nothivault/internal/vault/summarize"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env, then structured logging
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"vault_path", cfg.VaultPath,
		"slot", cfg.SlotName,
		"postgres", cfg.DatabaseURL != "",
		"max_file_size", cfg.MaxFileSize,
		"summaries", cfg.GeminiAPIKey != "",
	)

	ctx := context.Background()

	// Pick the persistence slot backend
	var slot store.Slot
	if cfg.DatabaseURL != "" {
		pgSlot, err := store.NewPostgresSlot(ctx, cfg.DatabaseURL, cfg.SlotName)
		if err != nil {
			slog.Error("failed to open postgres slot", "error", err)
			os.Exit(1)
		}
		defer pgSlot.Close()
		slot = pgSlot
	} else {
		fileSlot := store.NewFileSlot(cfg.VaultPath)
		if err := fileSlot.EnsureDir(); err != nil {
			slog.Error("failed to initialize vault storage", "error", err)
			os.Exit(1)
		}
		slot = fileSlot
	}

	// Load the document store
	st, err := store.Open(ctx, slot)
	if err != nil {
		slog.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	slog.Info("document store loaded", "records", st.Len())
	st.OnChange(func() {
		slog.Info("vault updated", "records", st.Len())
	})

	// Folder registry: configured file or the built-in set
	registry := folder.Default()
	if cfg.FoldersFile != "" {
		registry, err = folder.LoadFile(cfg.FoldersFile)
		if err != nil {
			slog.Error("failed to load folders file", "path", cfg.FoldersFile, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("folder registry ready", "folders", len(registry.Definitions()))

	// Optional summarization
	var summarizer service.Summarizer
	if cfg.GeminiAPIKey != "" {
		summarizer = summarize.New(summarize.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.SummaryTimeout,
		})
	}

	// Sessions and their sweeper
	sessions := service.NewManager(registry, st, summarizer, cfg.SessionTTL)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	sweeper := service.NewSweeper(sessions, cfg.SweepInterval)
	sweeper.Start(sweepCtx)

	// Setup HTTP router
	handler := api.NewHandler(sessions, registry, st, slot, cfg.MaxFileSize)
	e := api.SetupRouter(handler, sessions, cfg)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	sweepCancel()
	sweeper.Wait()

	slog.Info("server exited cleanly")
}
