package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/spf13/cobra"
)

// RootOptions holds the persistent flags shared by every command. Non-empty
// values override environment variables; a JSON config file named by
// --config overrides both.
type RootOptions struct {
	ConfigPath string
	DSN        string
	Address    string
	Token      string
	LogFile    string
	LogLevel   string
	Format     string
}

func (o *RootOptions) overrides() *config.StructuredConfig {
	return &config.StructuredConfig{
		App:     config.App{Token: o.Token},
		Storage: config.Storage{DB: config.DB{DSN: o.DSN}},
		Adapter: config.Adapter{HTTPAddress: o.Address},
		Log:     config.Log{File: o.LogFile, Level: o.LogLevel},

		JSONFilePath: o.ConfigPath,
	}
}

func (o *RootOptions) printer(cmd *cobra.Command) printer {
	return printer{format: o.Format, w: cmd.OutOrStdout()}
}

// openApp builds an App from the merged configuration. One-shot commands
// log at warn level unless a level is configured, so their output stays
// readable on stdout.
func (o *RootOptions) openApp(ctx context.Context, daemon bool) (*App, error) {
	cfg, err := config.GetClientConfig(o.overrides())
	if err != nil {
		return nil, wrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log := logger.NewClientLogger("sync-client", logger.FileOptions{Path: cfg.Log.File})
	level := cfg.Log.Level
	if level == "" && !daemon {
		level = "warn"
	}
	if err = logger.SetLevel(level); err != nil {
		return nil, wrapExitError(ExitCommandError, "invalid log level", err)
	}

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return nil, wrapExitError(ExitCommandError, "cannot start client", err)
	}
	return app, nil
}

// NewRootCommand creates the command tree of the sync client binary.
func NewRootCommand(info models.AppBuildInfo) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "money-keeper",
		Short: "Offline-first money tracker sync client",
		Long: `Keeps a local SQLite copy of accounts, categories and transactions
in step with the remote store.

Edits are made locally and pushed in the background; changes made on other
devices are pulled incrementally. Records edited on both sides end up as
conflicts that must be resolved explicitly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return wrapExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats), nil)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a JSON config file")
	flags.StringVar(&opts.DSN, "db", "", "path to the local SQLite database")
	flags.StringVarP(&opts.Address, "address", "a", "", "remote store address")
	flags.StringVarP(&opts.Token, "token", "t", "", "bearer token for the remote store")
	flags.StringVar(&opts.LogFile, "log-file", "", "write logs to a rotated file instead of stdout")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.Format, "format", FormatText, "output format ("+formatList()+")")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newRecordsCommand(opts))
	cmd.AddCommand(newConflictsCommand(opts))
	cmd.AddCommand(newVersionCommand(opts, info))

	return cmd
}
