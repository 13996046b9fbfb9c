package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func init() {
	newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var toyArgs = []string{"--toy-units", "3", "--toy-channels", "2", "--toy-duration", "2"}

// publishToy publishes a small toy example into db and returns the summary.
func publishToy(t *testing.T, db string) PublishSummary {
	t.Helper()
	args := append([]string{"publish", "--db", db, "--format", "json"}, toyArgs...)
	stdout, _, err := execute(t, args...)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   PublishSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "views.db")
}
