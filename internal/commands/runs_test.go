package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuns_Empty(t *testing.T) {
	dir := t.TempDir()
	out, err := runLevmatch(t, dir, "runs")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No runs recorded")
}

func TestRuns_AfterRun(t *testing.T) {
	ws := initWorkspace(t, "Nordström Måleri AB")
	out, err := runLevmatch(t, ws, "run", fixture(t, "leverantor_2025.si"), "--year", "2025")
	require.NoError(t, err, out)

	out, err = runLevmatch(t, ws, "runs")
	require.NoError(t, err, out)
	assert.Contains(t, out, "leverantor_2025.si")
	assert.Contains(t, out, "2025")
	assert.Contains(t, out, "1 runs")
}

func TestRuns_OtherDirectory(t *testing.T) {
	ws := initWorkspace(t, "Nordström Måleri AB")
	out, err := runLevmatch(t, ws, "run", fixture(t, "leverantor_2025.si"), "--year", "2025")
	require.NoError(t, err, out)

	elsewhere := t.TempDir()
	out, err = runLevmatch(t, elsewhere, "runs", "--dir", ws)
	require.NoError(t, err, out)
	assert.Contains(t, out, "leverantor_2025.si")
}
