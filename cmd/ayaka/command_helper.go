package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ayaka-run/ayaka/internal/viewmodel"
)

// CommandContext provides common command dependencies, eliminating
// repetitive view-model construction across CLI commands.
type CommandContext struct {
	VM      *viewmodel.GameViewModel
	Logger  *slog.Logger
	Context context.Context
}

// CommandHandler executes with an opened view-model; commands focus on
// command-surface calls, not façade construction.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withViewModel wraps a command handler with view-model construction and
// open_game, closing the engine when the handler returns.
func withViewModel(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		vm, err := viewmodel.New(stateDir, cfgFile, logger)
		if err != nil {
			return fmt.Errorf("construct view-model: %w", err)
		}

		ctx := cmd.Context()
		if err := vm.OpenGame(ctx, reportOpenStatus(logger)); err != nil {
			return fmt.Errorf("open game: %w", err)
		}
		defer func() { _ = vm.Close(ctx) }()

		return handler(&CommandContext{VM: vm, Logger: logger, Context: ctx}, cmd, args)
	}
}

func reportOpenStatus(logger *slog.Logger) func(viewmodel.OpenStatus) {
	return func(st viewmodel.OpenStatus) {
		switch s := st.(type) {
		case viewmodel.LoadProfileStatus:
			logger.Debug("loading game config", "run_id", s.RunID, "path", s.Path)
		case viewmodel.CreateRuntimeStatus:
			logger.Debug("creating wasm runtime", "run_id", s.RunID)
		case viewmodel.PluginLoadStatus:
			logger.Debug("loaded plugin", "run_id", s.RunID, "name", s.Name, "index", s.Index, "total", s.Total)
		case viewmodel.LoadSettingsStatus:
			logger.Debug("loading settings", "run_id", s.RunID)
		case viewmodel.LoadGlobalRecordsStatus:
			logger.Debug("loading global record", "run_id", s.RunID)
		case viewmodel.LoadRecordsStatus:
			logger.Debug("loading save records", "run_id", s.RunID)
		case viewmodel.LoadedStatus:
			logger.Debug("game ready", "run_id", s.RunID)
		}
	}
}
