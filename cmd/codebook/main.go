// Command codebook is a qualitative data analysis tool for the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/codebook/internal/adapters/driven/ai"
	"github.com/custodia-labs/codebook/internal/adapters/driven/config/file"
	"github.com/custodia-labs/codebook/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/codebook/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/codebook/internal/adapters/driving/cli"
	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
	"github.com/custodia-labs/codebook/internal/core/services"
	"github.com/custodia-labs/codebook/internal/logger"
	"github.com/custodia-labs/codebook/internal/parsers"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env is fine; the environment may already hold API keys.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	store, err := openStore(ctx, settings.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	wb := services.NewWorkbench(store, parsers.Default(), *settings)
	if err := wb.Load(ctx); err != nil {
		return fmt.Errorf("failed to load workspace state: %w", err)
	}

	llm, err := ai.NewLLMService(&settings.AI)
	if err != nil {
		logger.Warn("AI provider unavailable, using local heuristics: %v", err)
		llm = nil
	}
	suggestions := services.NewSuggestionService(llm, settings.AI.RequestsPerMinute)
	if prompts, err := file.NewPromptStore(""); err == nil {
		suggestions.SetPromptStore(prompts)
		cli.SetPromptWatcher(prompts)
	} else {
		logger.Debug("prompt overrides disabled: %v", err)
	}

	cli.SetServices(cli.Services{
		Workspace:  wb,
		Study:      wb,
		Document:   wb,
		Coding:     wb,
		Analysis:   wb,
		Exchange:   wb,
		Research:   wb,
		Suggestion: suggestions,
		Settings:   settingsService,
	})
	cli.SetVersion(version)

	root := cli.Root()
	root.SetOut(os.Stdout)
	return root.ExecuteContext(ctx)
}

// openStore opens the configured state backend.
func openStore(ctx context.Context, cfg domain.StorageSettings) (driven.StateStore, error) {
	if cfg.Backend == domain.StoragePostgres {
		store, err := postgres.NewStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		logger.Debug("using postgres storage")
		return store, nil
	}

	home, err := file.HomeDir()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("using sqlite storage in %s", home)
	return store, nil
}
