package client

import (
	"fmt"
	"io"

	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/spf13/cobra"
)

func newConflictsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List and resolve sync conflicts",
	}

	cmd.AddCommand(newConflictsListCommand(opts))
	cmd.AddCommand(newConflictsResolveCommand(opts))

	return cmd
}

func newConflictsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unresolved conflicts, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			conflicts, err := app.Services().ConflictResolver.GetConflicts(cmd.Context())
			if err != nil {
				return wrapExitError(ExitFailure, "list conflicts", err)
			}
			if conflicts == nil {
				conflicts = []models.ConflictRecord{}
			}
			return opts.printer(cmd).print(conflicts, func(w io.Writer) error {
				return writeConflicts(w, conflicts)
			})
		},
	}
}

func newConflictsResolveCommand(opts *RootOptions) *cobra.Command {
	var (
		strategy string
		fields   string
	)

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve the conflict of one record",
		Long: `Resolve a conflict with one of three strategies:

  keep_local    push the local copy again with a version above the server's
  keep_server   adopt the server copy
  manual_merge  apply --fields on top of the local copy and push the result

Example:
  money-keeper conflicts resolve 0f8c... --strategy keep_server
  money-keeper conflicts resolve 0f8c... --strategy manual_merge --fields '{"name":"Wallet"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolution, err := buildResolution(strategy, fields)
			if err != nil {
				return err
			}

			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			if err = app.Services().ConflictResolver.Resolve(cmd.Context(), args[0], resolution); err != nil {
				return wrapExitError(ExitFailure, "resolve conflict", err)
			}
			return opts.printer(cmd).print(map[string]string{"resolved": args[0], "strategy": strategy}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "resolved %s with %s\n", args[0], strategy)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "keep_local|keep_server|manual_merge")
	cmd.Flags().StringVar(&fields, "fields", "", "merged fields as a JSON object (manual_merge only)")
	_ = cmd.MarkFlagRequired("strategy")

	return cmd
}

func buildResolution(strategy, fields string) (models.Resolution, error) {
	parsed, err := models.ParseResolutionStrategy(strategy)
	if err != nil {
		return models.Resolution{}, wrapExitError(ExitCommandError, "invalid --strategy", err)
	}

	switch parsed {
	case models.ResolutionKeepLocal:
		return models.KeepLocal(), nil
	case models.ResolutionKeepServer:
		return models.KeepServer(), nil
	default:
		merged, err := decodeFields(fields)
		if err != nil {
			return models.Resolution{}, err
		}
		return models.ManualMerge(merged), nil
	}
}
