package etl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/hiring-dw/internal/report"
	"github.com/franz/hiring-dw/internal/store"
	"github.com/franz/hiring-dw/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLoad(t *testing.T, csvPath string, strict bool) (*Result, string, error) {
	t.Helper()

	var stages bytes.Buffer
	util.SetStageOutput(&stages)
	t.Cleanup(func() { util.SetStageOutput(nil) })

	dbPath := filepath.Join(t.TempDir(), "dw", "dw_hiring.db")
	loader := New(&Config{
		CSVPath:    csvPath,
		DBPath:     dbPath,
		SchemaPath: filepath.Join(t.TempDir(), "absent.sql"),
		RunID:      "test-run",
		Strict:     strict,
	})

	result, err := loader.Run(context.Background())
	return result, dbPath, err
}

func TestLoader_Run(t *testing.T) {
	path := writeCSV(t,
		header,
		"Ana;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9",
		"Bob;Lee;bob@x.com;USA;not-a-date;5;Senior;Go;10;10",
		"Cy;Doe;cy@x.com;Brazil;2020-01-02;2;Senior;Go;8;6",
	)

	result, dbPath, err := runLoad(t, path, false)
	require.NoError(t, err)

	assert.Equal(t, "test-run", result.RunID)
	assert.Equal(t, 3, result.SourceRows)
	assert.Equal(t, 2, result.HiredRows)
	assert.True(t, result.SchemaEmbedded)
	assert.Equal(t, 2, result.FactsLoaded)
	assert.Equal(t, 1, result.Drops.ByReason[DropInvalidDate])

	assert.Equal(t, 2, result.Count("fact_hiring"))
	assert.Equal(t, 2, result.Count("dim_date"))
	assert.Equal(t, 3, result.Count("dim_candidate"))
	assert.Equal(t, 2, result.Count("dim_country"))
	assert.Equal(t, 2, result.Count("dim_technology"))
	assert.Equal(t, 2, result.Count("dim_seniority"))

	require.Len(t, result.Counts, len(store.Tables))
	for i, c := range result.Counts {
		assert.Equal(t, store.Tables[i], c.Table)
	}

	s, err := store.OpenReadOnly(dbPath)
	require.NoError(t, err)
	defer s.Close()

	facts, err := s.GetFacts(context.Background())
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, 20190501, facts[0].DateID)
	assert.True(t, facts[0].Hired)
	assert.Equal(t, 20200102, facts[1].DateID)
	assert.False(t, facts[1].Hired, "8/6 is not a hire")
}

func TestLoader_Run_StageLines(t *testing.T) {
	path := writeCSV(t, header, "Ana;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9")

	var stages bytes.Buffer
	util.SetStageOutput(&stages)
	defer util.SetStageOutput(nil)

	loader := New(&Config{
		CSVPath: path,
		DBPath:  filepath.Join(t.TempDir(), "dw.db"),
	})
	_, err := loader.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stages.String()), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "[1/7] Reading CSV: "))
	assert.Equal(t, "[2/7] Normalizing data types", lines[1])
	assert.Equal(t, "[5/7] Loading dimension tables", lines[4])
	assert.Equal(t, "[7/7] Validating row counts", lines[6])
}

func TestLoader_Run_DuplicateEmails(t *testing.T) {
	path := writeCSV(t,
		header,
		"First;One;A@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9",
		"Second;Two;a@X.COM;Brazil;2019-05-02;3;Junior;DevOps;1;1",
	)

	result, dbPath, err := runLoad(t, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count("dim_candidate"))
	assert.Equal(t, 2, result.Count("fact_hiring"))

	s, err := store.OpenReadOnly(dbPath)
	require.NoError(t, err)
	defer s.Close()

	c, err := s.GetCandidate(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "First", c.FirstName)
}

func TestLoader_Run_MissingColumnsLeavesStoreUntouched(t *testing.T) {
	path := writeCSV(t, "First Name;Email\nAna;ana@x.com")

	dbPath := filepath.Join(t.TempDir(), "dw.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("previous"), 0644))

	loader := New(&Config{CSVPath: path, DBPath: dbPath})
	util.SetStageOutput(&bytes.Buffer{})
	defer util.SetStageOutput(nil)

	_, err := loader.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrMalformedInput))
	assert.Equal(t, util.ExitMalformedInput, util.ExitCodeForError(err))

	content, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(content))
}

func TestLoader_Run_NoFacts(t *testing.T) {
	path := writeCSV(t,
		header,
		"Ana;Silva;ana@x.com;Brazil;garbage;3;Junior;DevOps;8;9",
	)

	result, _, err := runLoad(t, path, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrNoFactsLoaded))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.FactsLoaded)
	assert.Equal(t, 1, result.Count("dim_candidate"))
}

func TestLoader_Run_EmptySource(t *testing.T) {
	path := writeCSV(t, header)

	result, _, err := runLoad(t, path, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SourceRows)
	assert.Equal(t, 0, result.Count("fact_hiring"))
}

func TestLoader_Run_Strict(t *testing.T) {
	path := writeCSV(t,
		header,
		"Ana;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9",
		"Bob;Lee;bob@x.com;;2019-05-01;3;Junior;DevOps;8;9",
	)

	result, _, err := runLoad(t, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Drops.ByReason[DropUnknownCountry])

	result, _, err = runLoad(t, path, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrPartialLoad))
	assert.Equal(t, util.ExitPartialLoad, util.ExitCodeForError(err))
	assert.Equal(t, 1, result.FactsLoaded)
}

func TestLoader_Run_EventLog(t *testing.T) {
	path := writeCSV(t,
		header,
		"Ana;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;DevOps;8;9",
		"Bob;Lee;bob@x.com;Brazil;garbage;3;Junior;DevOps;8;9",
	)

	logDir := t.TempDir()
	logger, err := report.NewEventLogger(logDir, "run-ev", report.LevelDebug)
	require.NoError(t, err)

	util.SetStageOutput(&bytes.Buffer{})
	defer util.SetStageOutput(nil)

	loader := New(&Config{
		CSVPath: path,
		DBPath:  filepath.Join(t.TempDir(), "dw.db"),
		Logger:  logger,
		RunID:   "run-ev",
	})
	_, err = loader.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	log := string(content)

	assert.Equal(t, 7, strings.Count(log, `"event":"stage"`))
	assert.Contains(t, log, `"reason":"invalid_date"`)
	assert.Contains(t, log, `"event":"complete"`)
	assert.NotContains(t, log, `"run_id":""`)
}
