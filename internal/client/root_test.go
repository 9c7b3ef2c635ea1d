package client

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuildInfo() models.AppBuildInfo {
	return models.NewAppBuildInfo("1.2.3", "2026-10-01", "abc123")
}

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(testBuildInfo())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// localArgs points the client at a fresh database and an address nothing
// listens on.
func localArgs(t *testing.T) []string {
	t.Helper()
	return []string{"--db", filepath.Join(t.TempDir(), "client.db"), "--address", "127.0.0.1:1"}
}

// ── command tree ─────────────────────────────────────────────────────────────

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(testBuildInfo())
	require.NotNil(t, cmd)
	assert.Equal(t, "money-keeper", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(testBuildInfo())

	for _, path := range [][]string{
		{"run"},
		{"sync"},
		{"version"},
		{"records", "list"},
		{"records", "get"},
		{"records", "add"},
		{"records", "edit"},
		{"records", "delete"},
		{"conflicts", "list"},
		{"conflicts", "resolve"},
	} {
		t.Run(path[len(path)-1], func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(testBuildInfo())

	for name, shorthand := range map[string]string{
		"config": "c", "db": "", "address": "a", "token": "t", "log-file": "", "log-level": "", "format": "",
	} {
		t.Run(name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(name)
			require.NotNil(t, flag)
			assert.Equal(t, shorthand, flag.Shorthand)
		})
	}

	assert.Equal(t, FormatText, cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestResolveCommandFlags(t *testing.T) {
	cmd := NewRootCommand(testBuildInfo())
	resolve, _, err := cmd.Find([]string{"conflicts", "resolve"})
	require.NoError(t, err)

	require.NotNil(t, resolve.Flags().Lookup("strategy"))
	require.NotNil(t, resolve.Flags().Lookup("fields"))
}

func TestRecordsListFlags(t *testing.T) {
	cmd := NewRootCommand(testBuildInfo())
	list, _, err := cmd.Find([]string{"records", "list"})
	require.NoError(t, err)

	deleted := list.Flags().Lookup("deleted")
	require.NotNil(t, deleted)
	assert.Equal(t, "false", deleted.DefValue)
	require.NotNil(t, list.InheritedFlags().Lookup("table"))
}

// ── version / format ─────────────────────────────────────────────────────────

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: 1.2.3")
	assert.Contains(t, out, "Build commit: abc123")

	out, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	var v versionView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, versionView{Version: "1.2.3", Date: "2026-10-01", Commit: "abc123"}, v)
}

func TestVersionCommand_MissingBuildInfo(t *testing.T) {
	cmd := NewRootCommand(models.NewAppBuildInfo("", "", ""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Build version: N/A")
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "version", "--format", "yaml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}
