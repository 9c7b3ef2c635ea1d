package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/spf13/cobra"
)

// recordView adds the local sync status, which the wire form omits.
type recordView struct {
	models.SyncableRecord
	SyncStatus models.SyncStatus `json:"sync_status"`
}

func newRecordView(rec models.SyncableRecord) recordView {
	return recordView{SyncableRecord: rec, SyncStatus: rec.SyncStatus}
}

type recordsOptions struct {
	*RootOptions
	Table string
}

func (o *recordsOptions) table() (models.TableName, error) {
	table, err := models.ParseTableName(o.Table)
	if err != nil {
		return "", wrapExitError(ExitCommandError, "invalid --table", err)
	}
	return table, nil
}

func newRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &recordsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and edit local records",
		Long: `Create, edit, delete and list records in the local store.

Every edit is marked pending and pushed by the next sync cycle.

Example:
  money-keeper records add --table accounts --data '{"name":"Cash","currency":"EUR","opening_balance":"0"}'
  money-keeper records edit 0f8c... --table accounts --data '{"name":"Wallet"}'`,
	}
	cmd.PersistentFlags().StringVar(&opts.Table, "table", "", "table name (accounts|categories|transactions|inbox_items)")
	_ = cmd.MarkPersistentFlagRequired("table")

	cmd.AddCommand(newRecordsListCommand(opts))
	cmd.AddCommand(newRecordsGetCommand(opts))
	cmd.AddCommand(newRecordsAddCommand(opts))
	cmd.AddCommand(newRecordsEditCommand(opts))
	cmd.AddCommand(newRecordsDeleteCommand(opts))

	return cmd
}

func newRecordsListCommand(opts *recordsOptions) *cobra.Command {
	var includeDeleted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records of a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}

			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			records, err := app.Services().RecordService.List(cmd.Context(), table, includeDeleted)
			if err != nil {
				return wrapExitError(ExitFailure, "list records", err)
			}

			views := make([]recordView, 0, len(records))
			for _, rec := range records {
				views = append(views, newRecordView(rec))
			}
			return opts.printer(cmd).print(views, func(w io.Writer) error {
				return writeRecords(w, records)
			})
		},
	}
	cmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include soft-deleted records")

	return cmd
}

func newRecordsGetCommand(opts *recordsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}

			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Services().RecordService.Get(cmd.Context(), table, args[0])
			if err != nil {
				return wrapExitError(ExitFailure, "get record", err)
			}
			return opts.printer(cmd).print(newRecordView(rec), func(w io.Writer) error {
				return writeRecords(w, []models.SyncableRecord{rec})
			})
		},
	}
}

func newRecordsAddCommand(opts *recordsOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a record from a JSON payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}

			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Services().RecordService.Create(cmd.Context(), table, json.RawMessage(data))
			if err != nil {
				return wrapExitError(ExitFailure, "create record", err)
			}
			return opts.printer(cmd).print(newRecordView(rec), func(w io.Writer) error {
				_, err := fmt.Fprintln(w, rec.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "record payload as a JSON object")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newRecordsEditCommand(opts *recordsOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Merge JSON fields into a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}

			fields, err := decodeFields(data)
			if err != nil {
				return err
			}

			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Services().RecordService.Update(cmd.Context(), table, args[0], fields)
			if err != nil {
				return wrapExitError(ExitFailure, "update record", err)
			}
			return opts.printer(cmd).print(newRecordView(rec), func(w io.Writer) error {
				return writeRecords(w, []models.SyncableRecord{rec})
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "fields to change as a JSON object")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newRecordsDeleteCommand(opts *recordsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}

			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			if err = app.Services().RecordService.Delete(cmd.Context(), table, args[0]); err != nil {
				return wrapExitError(ExitFailure, "delete record", err)
			}
			return opts.printer(cmd).print(map[string]string{"deleted": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted %s\n", args[0])
				return err
			})
		},
	}
}

func decodeFields(data string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, wrapExitError(ExitCommandError, "--data must be a JSON object", err)
	}
	return fields, nil
}
