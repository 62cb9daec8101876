package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insertion-workers/internal/backfill"
	"insertion-workers/internal/eligibility"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, &backfill.Summary{Scanned: 4, Changed: 1, Updated: 1, ByStatus: map[eligibility.Status]int{eligibility.StatusEligible: 4}}))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.EqualValues(t, 4, out["scanned"])
	assert.Equal(t, map[string]interface{}{"ELIGIBLE": float64(4)}, out["byStatus"])
}

func TestRunCmdFlags(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--call", "appel-9", "--dry-run", "--concurrency", "4", "--page-size", "50",
		"--flush-policy", "prog-1", "--flush-policy", "prog-2"}))

	call, _ := cmd.Flags().GetString("call")
	dry, _ := cmd.Flags().GetBool("dry-run")
	conc, _ := cmd.Flags().GetInt("concurrency")
	size, _ := cmd.Flags().GetInt("page-size")
	flush, _ := cmd.Flags().GetStringSlice("flush-policy")

	assert.Equal(t, "appel-9", call)
	assert.True(t, dry)
	assert.Equal(t, 4, conc)
	assert.Equal(t, 50, size)
	assert.Equal(t, []string{"prog-1", "prog-2"}, flush)
}
