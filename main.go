package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elmanelman/sql-trainer/config"
	"github.com/elmanelman/sql-trainer/judge"
)

var configPath string

func main() {
	ctx, stop := setupSigtermHandler()
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := rootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func setupSigtermHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql-trainer",
		Short: "Practise SQL against a local dataset",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default "+config.DefaultConfigFile+" if present)")

	cmd.AddCommand(
		serveCommand(),
		checkCommand(),
		queryCommand(),
		exercisesCommand(),
	)
	return cmd
}

// loadConfig reads --config, or config.json when it exists, over the defaults.
func loadConfig() (config.TrainerConfig, error) {
	cfg := config.Default()

	path := configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		path = config.DefaultConfigFile
	}
	if err := cfg.LoadFromFile(path); err != nil {
		return cfg, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// startTrainer starts a trainer the caller must stop.
func startTrainer(cmd *cobra.Command, cfg config.TrainerConfig) (*judge.Trainer, error) {
	cmd.SilenceUsage = true

	t := judge.NewTrainer()
	if err := t.Start(cmd.Context(), cfg); err != nil {
		t.Stop()
		return nil, err
	}
	return t, nil
}
