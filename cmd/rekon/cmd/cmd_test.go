package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExports(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	grid := "NO PEKERJA,,AB12\nNAMA,,AHMAD BIN ALI\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AB_pay.csv"), []byte(grid), 0o644))
	for _, name := range extra {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	return dir
}

func TestReportExitsNonZeroOnClassifyFailure(t *testing.T) {
	dir := writeExports(t, "notes.pdf")
	reportCmd.SetContext(context.Background())
	require.NoError(t, reportCmd.Flags().Set("input", dir))

	err := runReport(reportCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be classified")
}

func TestReportSucceedsWhenAllFilesClassify(t *testing.T) {
	dir := writeExports(t)
	reportCmd.SetContext(context.Background())
	require.NoError(t, reportCmd.Flags().Set("input", dir))

	assert.NoError(t, runReport(reportCmd, nil))
}

func TestParseDirectoryExitsNonZeroOnClassifyFailure(t *testing.T) {
	dir := writeExports(t, "notes.pdf")
	parseCmd.SetContext(context.Background())
	require.NoError(t, parseCmd.Flags().Set("input", dir))

	err := runParse(parseCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be classified")
}
