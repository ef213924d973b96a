package chart

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8*DPI, cfg.Width)
	assert.Equal(t, 6*DPI, cfg.Height)
}

func TestSaveBar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hires_by_technology.png")

	err := SaveBar(path, &Bar{
		Title:        "Hires by Technology",
		XLabel:       "Technology",
		YLabel:       "Hires",
		Labels:       []string{"DevOps", "Game Development", "Security"},
		Values:       []float64{3, 1, 0},
		RotateLabels: true,
	})
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestSaveBar_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "empty.png")

	require.NoError(t, SaveBar(path, &Bar{Title: "Hires by Technology"}))
	assertPNG(t, path)
}

func TestSaveBar_LengthMismatch(t *testing.T) {
	err := SaveBar(filepath.Join(t.TempDir(), "x.png"), &Bar{
		Labels: []string{"a", "b"},
		Values: []float64{1},
	})
	assert.Error(t, err)
}

func TestSaveLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hires_by_country_over_years.png")

	err := SaveLines(path, &Lines{
		Title:  "Hires by Country over Years",
		XLabel: "Year",
		YLabel: "Hires",
		Labels: []string{"2018", "2019", "2020"},
		Series: []Series{
			{Name: "Brazil", Values: []float64{2, 0, 0}},
			{Name: "USA", Values: []float64{0, 1, math.NaN()}},
		},
	})
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestSaveLines_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avg_scores_by_seniority.png")

	err := SaveLines(path, &Lines{
		Title:  "Average Scores by Seniority",
		Series: []Series{{Name: "Code challenge"}, {Name: "Technical interview"}},
	})
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestSaveLines_LengthMismatch(t *testing.T) {
	err := SaveLines(filepath.Join(t.TempDir(), "x.png"), &Lines{
		Labels: []string{"2018"},
		Series: []Series{{Name: "Brazil", Values: []float64{1, 2}}},
	})
	assert.Error(t, err)
}

func TestPoints_SkipsMissing(t *testing.T) {
	pts := points([]float64{1, math.NaN(), 3})
	require.Len(t, pts, 2)
	assert.Equal(t, 2.0, pts[1].X)
	assert.Equal(t, 3.0, pts[1].Y)
}
