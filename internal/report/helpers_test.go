package report

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/franz/hiring-dw/internal/store"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	date       int
	email      string
	country    string
	technology string
	seniority  string
	code       float64
	interview  float64
}

func (f fixture) hired() bool {
	return f.code >= 7 && f.interview >= 7
}

// newWarehouse creates a warehouse holding the fixtures and reopens it
// read-only
func newWarehouse(t *testing.T, facts []fixture) *store.Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dw.db")

	s, err := store.Create(ctx, path, store.DefaultSchema)
	require.NoError(t, err)

	seenDate := map[int]bool{}
	seen := map[string]bool{}
	var dates []store.DateRow
	var candidates []store.CandidateRow
	names := map[string][]string{}
	add := func(dim store.Dimension, v string) {
		if !seen[dim.Table+v] {
			seen[dim.Table+v] = true
			names[dim.Table] = append(names[dim.Table], v)
		}
	}

	for _, f := range facts {
		if !seenDate[f.date] {
			seenDate[f.date] = true
			dates = append(dates, store.DateRow{
				DateID: f.date, Date: "", Year: f.date / 10000,
				Quarter: 1, Month: f.date / 100 % 100, Day: f.date % 100,
			})
		}
		if !seen["cand"+f.email] {
			seen["cand"+f.email] = true
			candidates = append(candidates, store.CandidateRow{Email: f.email})
		}
		add(store.DimCountry, f.country)
		add(store.DimTechnology, f.technology)
		add(store.DimSeniority, f.seniority)
	}

	require.NoError(t, s.InsertDates(ctx, dates))
	require.NoError(t, s.InsertCandidates(ctx, candidates))
	for _, dim := range []store.Dimension{store.DimCountry, store.DimTechnology, store.DimSeniority} {
		require.NoError(t, s.InsertNames(ctx, dim, names[dim.Table]))
	}

	keys := map[string]map[string]int64{}
	for _, dim := range []store.Dimension{store.DimCountry, store.DimTechnology, store.DimSeniority, store.DimCandidate} {
		m, err := s.KeyMap(ctx, dim)
		require.NoError(t, err)
		keys[dim.Table] = m
	}

	rows := make([]store.FactRow, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, store.FactRow{
			CandidateID:             keys["dim_candidate"][f.email],
			DateID:                  f.date,
			CountryID:               keys["dim_country"][f.country],
			TechnologyID:            keys["dim_technology"][f.technology],
			SeniorityID:             keys["dim_seniority"][f.seniority],
			CodeChallengeScore:      sql.NullFloat64{Float64: f.code, Valid: true},
			TechnicalInterviewScore: sql.NullFloat64{Float64: f.interview, Valid: true},
			Hired:                   f.hired(),
		})
	}
	_, err = s.InsertFacts(ctx, rows, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ro, err := store.OpenReadOnly(path)
	require.NoError(t, err)
	t.Cleanup(func() { ro.Close() })
	return ro
}

func sampleFixtures() []fixture {
	return []fixture{
		{20180105, "a@x.com", "Brazil", "DevOps", "Senior", 9, 8},
		{20180310, "b@x.com", "Brazil", "DevOps", "Junior", 7, 7},
		{20190620, "c@x.com", "USA", "Game Development", "Senior", 10, 10},
		{20190621, "d@x.com", "Peru", "Security", "Lead", 2, 9},
		{20200101, "e@x.com", "Colombia", "DevOps", "Lead", 8, 7},
		{20200102, "f@x.com", "Brazil", "Game Development", "Junior", 6, 9},
	}
}
