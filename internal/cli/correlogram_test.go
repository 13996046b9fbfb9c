package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelogramAutoJSON(t *testing.T) {
	stdout, _, err := execute(t, "correlogram", "--train", "0,10,20", "--rate", "1000",
		"--window-ms", "50", "--bin-ms", "10", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CorrelogramOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.True(t, resp.Data.Auto)
	assert.Equal(t, []int64{0, 0, 0, 1, 2, 0, 2, 1, 0, 0}, resp.Data.BinCounts)
	assert.Len(t, resp.Data.BinEdgesSec, 11)
	assert.Equal(t, int64(6), resp.Data.Total)
}

func TestCorrelogramCrossText(t *testing.T) {
	stdout, _, err := execute(t, "correlogram", "--train", "0,10", "--train2", "5", "--rate", "1000",
		"--window-ms", "50", "--bin-ms", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cross-correlogram: 10 bins, 2 pairs")
	assert.Contains(t, stdout, "from (ms)")
}

func TestCorrelogramUsesConfigDefaults(t *testing.T) {
	stdout, _, err := execute(t, "correlogram", "--train", "0,30", "--rate", "30000", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data CorrelogramOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	// 50 ms window with 1 ms bins.
	assert.Len(t, resp.Data.BinCounts, 100)
}

func TestCorrelogramRejectsBadParams(t *testing.T) {
	stdout, _, err := execute(t, "correlogram", "--train", "0,10", "--rate", "1000", "--window-ms", "50", "--bin-ms", "7")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeInvalidParam)
}

func TestCorrelogramRejectsUnsortedTrain(t *testing.T) {
	_, _, err := execute(t, "correlogram", "--train", "10,0", "--rate", "1000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sorted")
}
