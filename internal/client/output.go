package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/MKhiriev/go-money-keeper/models"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var validFormats = []string{FormatText, FormatJSON}

// Exit codes returned by the client binary.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func wrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the exit code from err. Errors without one map to
// ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// printer renders command results either as indented JSON or as text.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) print(v any, text func(w io.Writer) error) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(p.w)
}

func writeRecords(w io.Writer, records []models.SyncableRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tSTATUS\tDELETED\tPAYLOAD")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%t\t%s\n", rec.ID, rec.Version, rec.SyncStatus, rec.IsDeleted(), rec.Payload)
	}
	return tw.Flush()
}

func writeConflicts(w io.Writer, conflicts []models.ConflictRecord) error {
	if len(conflicts) == 0 {
		_, err := fmt.Fprintln(w, "no unresolved conflicts")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTABLE\tLOCAL\tSERVER\tREASON\tDETECTED\tMESSAGE")
	for _, c := range conflicts {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			c.ID, c.TableName, c.LocalVersion, c.ServerVersion, c.Reason, c.DetectedAt, c.Message)
	}
	return tw.Flush()
}

func writeSyncResult(w io.Writer, result models.SyncResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tPUSHED\tSYNCED\tCONFLICTS\tERRORS\tQUARANTINED\tPULLED\tHELD")
	for _, table := range models.SyncTables {
		s, ok := result.Tables[table]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			table, s.Pushed, s.Synced, s.Conflicts, s.Errors, s.Quarantined, s.Pulled, s.Held)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Flushed > 0 {
		fmt.Fprintf(w, "replayed %d buffered edits\n", result.Flushed)
	}
	for _, q := range result.Quarantined {
		fmt.Fprintf(w, "quarantined %s/%s: %s\n", q.Table, q.ID, q.Reason)
	}
	for id, msg := range result.Errors {
		fmt.Fprintf(w, "error %s: %s\n", id, msg)
	}
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func formatList() string {
	return strings.Join(validFormats, "|")
}
