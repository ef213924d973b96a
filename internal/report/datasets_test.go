package report

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/franz/hiring-dw/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCountryYearHires_Pivot(t *testing.T) {
	d := CountryYearHires([]store.CountryYearCount{
		{Year: 2019, Country: "USA", Hires: 4},
		{Year: 2018, Country: "Brazil", Hires: 1},
		{Year: 2019, Country: "Brazil", Hires: 2},
		{Year: 2021, Country: "Ecuador", Hires: 3},
	})

	assert.Equal(t, KindLine, d.Kind)
	assert.Equal(t, []string{"2018", "2019", "2021"}, d.Labels)
	require.Len(t, d.Series, 3)
	assert.Equal(t, "Brazil", d.Series[0].Name)
	assert.Equal(t, []float64{1, 2, 0}, d.Series[0].Values)
	assert.Equal(t, "Ecuador", d.Series[1].Name)
	assert.Equal(t, []float64{0, 0, 3}, d.Series[1].Values)
	assert.Equal(t, "USA", d.Series[2].Name)
	assert.Equal(t, []float64{0, 4, 0}, d.Series[2].Values)
}

func TestCountryYearHires_Empty(t *testing.T) {
	d := CountryYearHires(nil)
	assert.Empty(t, d.Labels)
	assert.Empty(t, d.Series)
	assert.Equal(t, "hires_by_country_over_years.png", d.File())
}

func TestSeniorityScoreAverages_NullAverages(t *testing.T) {
	d := SeniorityScoreAverages([]store.SeniorityScores{
		{Seniority: "Lead", AvgCodeChallenge: sql.NullFloat64{Float64: 8.5, Valid: true}},
	})

	require.Len(t, d.Series, 2)
	assert.Equal(t, 8.5, d.Series[0].Values[0])
	assert.True(t, math.IsNaN(d.Series[1].Values[0]))

	m := NewManifest([]*Dataset{d}, nil, nil)
	require.Len(t, m.Charts[0].Series, 2)
	require.NotNil(t, m.Charts[0].Series[0].Values[0])
	assert.Equal(t, 8.5, *m.Charts[0].Series[0].Values[0])
	assert.Nil(t, m.Charts[0].Series[1].Values[0])
}

func TestDataset_RenderBothKinds(t *testing.T) {
	dir := t.TempDir()

	bar := YearHires([]store.YearCount{{Year: 2018, Hires: 2}})
	require.NoError(t, bar.Render(filepath.Join(dir, bar.File())))
	assert.FileExists(t, filepath.Join(dir, "hires_by_year.png"))

	line := SeniorityScoreAverages(nil)
	require.NoError(t, line.Render(filepath.Join(dir, line.File())))
	assert.FileExists(t, filepath.Join(dir, "avg_scores_by_seniority.png"))
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	datasets := []*Dataset{
		TechnologyHires([]store.CategoryCount{{Label: "DevOps", Hires: 3}, {Label: "Go", Hires: 1}}),
		SeniorityScoreAverages([]store.SeniorityScores{
			{Seniority: "Lead", AvgCodeChallenge: sql.NullFloat64{Float64: 8.5, Valid: true}},
		}),
	}

	require.NoError(t, WriteWorkbook(path, datasets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"hires_by_technology", "avg_scores_by_seniority"}, f.GetSheetList())

	rows, err := f.GetRows("hires_by_technology")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Technology", "hires"}, rows[0])
	assert.Equal(t, []string{"DevOps", "3"}, rows[1])

	cell, err := f.GetCellValue("avg_scores_by_seniority", "C2")
	require.NoError(t, err)
	assert.Empty(t, cell)
}
