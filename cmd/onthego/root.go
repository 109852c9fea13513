package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/2beens/onthego/internal/config"
	"github.com/2beens/onthego/internal/logging"
	"github.com/2beens/onthego/pkg"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	env        string
	configPath string
	envFile    string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "onthego",
		Short:         "Rowing session dashboard for garmin connect activities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file with secrets")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newActivitiesCmd(opts))

	return rootCmd
}

func (o *rootOptions) load() error {
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	exists, err := pkg.PathExists(o.configPath, false)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if !exists {
		return fmt.Errorf("config file %s not found", o.configPath)
	}

	cfg, err := config.Load(o.env, o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "onthego",
	})

	log.Debugf("---->> running in [%s] environment", cfg.Environment)
	return nil
}
