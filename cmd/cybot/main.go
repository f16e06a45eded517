package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cybot-be/internal/bootstrap"
	"cybot-be/internal/config"
	"cybot-be/pkg/database"

	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	container *bootstrap.Container
)

var rootCmd = &cobra.Command{
	Use:   "cybot",
	Short: "CyBot - complaint-aware document assistant",
	Long: `CyBot answers questions about the indexed documents and files or
looks up customer complaints through the ticketing API.

Run "cybot chat" to talk to it from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

// boot connects to the database and wires the full container. Commands
// that only need the classifier skip it.
func boot(ctx context.Context) (*bootstrap.Container, error) {
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection,
		database.WithLogLevel(cfg.Database.LogLevel),
		database.WithWriter(os.Stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	container, err = bootstrap.NewContainer(db, cfg)
	if err != nil {
		return nil, err
	}
	if err := container.Start(ctx); err != nil {
		return nil, err
	}
	return container, nil
}

func init() {
	rootCmd.AddCommand(chatCmd, indexCmd, classifyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if container != nil {
		container.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
