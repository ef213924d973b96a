package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/hiring-dw/internal/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	bindFlags()
	t.Cleanup(func() {
		viper.Reset()
		bindFlags()
	})

	var stages bytes.Buffer
	util.SetStageOutput(&stages)
	t.Cleanup(func() { util.SetStageOutput(nil) })

	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range []string{"load", "report", "doctor"} {
		sub, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		sub.Flags().VisitAll(reset)
	}

	// stdout is captured through a pipe since the commands print directly
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w

	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = stdout
	var out bytes.Buffer
	out.ReadFrom(r)

	return out.String(), runErr
}

func TestLoadAndReport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "candidates.csv")
	content := strings.Join([]string{
		testHeader,
		"Ana;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9",
		"Bob;Lee;bob@x.com;USA;not-a-date;5;Senior;Go;10;10",
		"Cy;Doe;cy@x.com;Colombia;2020-01-02;2;Senior;Go;8;6",
	}, "\n")
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	dbPath := filepath.Join(dir, "dw", "dw_hiring.db")
	summaryPath := filepath.Join(dir, "load.md")

	out, err := execute(t, "load", "-q",
		"--csv", csvPath,
		"--db", dbPath,
		"--event-log-dir", filepath.Join(dir, "artifacts"),
		"--summary", summaryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "LOAD COMPLETE")
	assert.Contains(t, out, "fact_hiring: 2")
	assert.FileExists(t, summaryPath)

	plots := filepath.Join(dir, "plots")
	out, err = execute(t, "report", "-q", "--db", dbPath, "--out", plots, "--event-log-dir", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Charts successfully generated in: "+plots)
	assert.FileExists(t, filepath.Join(plots, "hires_by_technology.png"))
	assert.FileExists(t, filepath.Join(plots, "manifest.yaml"))
}

func TestLoad_StrictExitCode(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "candidates.csv")
	content := testHeader + "\n" +
		"Ana;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9\n" +
		"Bob;Lee;bob@x.com;USA;garbage;5;Senior;Go;10;10\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	_, err := execute(t, "load", "-q", "--strict",
		"--csv", csvPath,
		"--db", filepath.Join(dir, "dw.db"),
		"--event-log-dir", "")
	require.Error(t, err)
	assert.Equal(t, util.ExitPartialLoad, util.ExitCodeForError(err))
}

func TestReport_MissingWarehouse(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "report", "-q",
		"--db", filepath.Join(dir, "absent.db"),
		"--out", filepath.Join(dir, "plots"),
		"--event-log-dir", "")
	require.Error(t, err)
	assert.Equal(t, util.ExitNotFound, util.ExitCodeForError(err))
}

func TestReport_InvalidWorkbookPath(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "report", "-q",
		"--db", filepath.Join(dir, "absent.db"),
		"--xlsx", filepath.Join(dir, "report.csv"),
		"--event-log-dir", "")
	require.Error(t, err)
	assert.Equal(t, util.ExitConfigError, util.ExitCodeForError(err))
}
