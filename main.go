// Package main is the entry point for the personal expense tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/expense-tracker/internal/bot"
	"gitlab.com/yelinaung/expense-tracker/internal/config"
	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
	"gitlab.com/yelinaung/expense-tracker/internal/telemetry"
	"gitlab.com/yelinaung/expense-tracker/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "expense-tracker",
		Short:         "Personal expense tracker with a web API and a Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return initConfig()
		},
	}

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), versionCmd())
	return root
}

func initConfig() error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)
	logger.SetHashSalt(cfg.LogHashSalt)
	return nil
}

// openStore connects to the configured store, or returns an unconfigured one
// so the views can still serve setup instructions.
func openStore(ctx context.Context) (*database.Store, error) {
	if !cfg.StoreConfigured() {
		logger.Log.Warn().
			Strs("missing", cfg.MissingStoreSettings()).
			Msg("Store is not configured, running in setup mode")
		return database.Unconfigured(), nil
	}

	store, err := database.Open(ctx, cfg.StoreURL, cfg.StoreAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	return store, nil
}

// requireStore opens the store for commands that cannot run without one.
func requireStore(ctx context.Context) (*database.Store, error) {
	if !cfg.StoreConfigured() {
		return nil, fmt.Errorf("%w: set %v", database.ErrNotConfigured, cfg.MissingStoreSettings())
	}
	return openStore(ctx)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when a token is set, the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTelExporter, version)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	categories := repository.NewCategoryRepository(store.DB())
	expenses := repository.NewExpenseRepository(store.DB())

	// Interface values stay nil when suggestions are off.
	var webSuggester web.CategorySuggester
	var botSuggester bot.CategorySuggester
	if cfg.SuggestionsEnabled() {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create suggestion client: %w", err)
		}
		webSuggester = client
		botSuggester = client
	}

	server := web.New(categories, expenses, web.Options{
		CORSOrigins:     cfg.CORSOrigins,
		MissingSettings: cfg.MissingStoreSettings(),
		Suggester:       webSuggester,
	})

	if cfg.BotEnabled() {
		telegramBot, err := bot.New(cfg, categories, expenses, botSuggester)
		if err != nil {
			return err
		}
		go telegramBot.Start(ctx)
	} else {
		logger.Log.Info().Msg("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := requireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := database.RunMigrations(cmd.Context(), store.DB()); err != nil {
				return err
			}
			logger.Log.Info().Msg("Migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := requireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := database.SeedCategories(cmd.Context(), store.DB()); err != nil {
				return err
			}
			logger.Log.Info().Msg("Default categories seeded")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "expense-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
