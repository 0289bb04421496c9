package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/awareness-backend/internal/app"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type cliState struct {
	log *logger.Logger
	cfg app.Config
}

var rt cliState

var rootCmd = &cobra.Command{
	Use:           "awareness",
	Short:         "Security awareness training portal",
	Long:          "Serves the training portal API and manages its schema and content catalog.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt.log != nil {
			rt.log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (defaults to ./.env when present)")
	rootCmd.PersistentFlags().String("log-mode", "", "Logger mode: development or production (overrides LOG_MODE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(eventsCmd)
}

func setup(cmd *cobra.Command) error {
	mode, _ := cmd.Flags().GetString("log-mode")
	if mode == "" {
		mode = os.Getenv("LOG_MODE")
	}
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		app.LoadDotEnv(log, envFile)
	} else {
		app.LoadDotEnv(log)
	}

	rt = cliState{log: log, cfg: app.LoadConfig(log)}
	return nil
}
