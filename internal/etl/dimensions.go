package etl

import (
	"sort"
	"time"

	"github.com/franz/hiring-dw/internal/store"
)

// Dimensions holds the deduplicated dimension rows built from the source,
// in the order they are inserted
type Dimensions struct {
	Dates        []store.DateRow
	Countries    []string
	Technologies []string
	Seniorities  []string
	Candidates   []store.CandidateRow
}

// BuildDimensions derives every dimension from the normalized records.
// Dates are ascending; categorical values are distinct and sorted; candidates
// are deduplicated by email keeping the first record in email order (ties
// keep source order).
func BuildDimensions(records []Record) *Dimensions {
	return &Dimensions{
		Dates:        buildDates(records),
		Countries:    distinctSorted(records, func(r Record) string { return r.Country }),
		Technologies: distinctSorted(records, func(r Record) string { return r.Technology }),
		Seniorities:  distinctSorted(records, func(r Record) string { return r.Seniority }),
		Candidates:   buildCandidates(records),
	}
}

// NewDateRow expands a date into its dim_date attributes
func NewDateRow(t time.Time) store.DateRow {
	wd := t.Weekday()
	return store.DateRow{
		DateID:    DateID(t),
		Date:      t.Format("2006-01-02"),
		Year:      t.Year(),
		Quarter:   (int(t.Month())-1)/3 + 1,
		Month:     int(t.Month()),
		Day:       t.Day(),
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
	}
}

func buildDates(records []Record) []store.DateRow {
	seen := make(map[int]bool)
	rows := make([]store.DateRow, 0)
	for _, r := range records {
		if !r.HasDate {
			continue
		}
		row := NewDateRow(r.ApplicationDate)
		if seen[row.DateID] {
			continue
		}
		seen[row.DateID] = true
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].DateID < rows[j].DateID
	})
	return rows
}

func distinctSorted(records []Record, key func(Record) string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, r := range records {
		v := key(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func buildCandidates(records []Record) []store.CandidateRow {
	sorted := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Email != "" {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Email < sorted[j].Email
	})

	rows := make([]store.CandidateRow, 0, len(sorted))
	for i, r := range sorted {
		if i > 0 && sorted[i-1].Email == r.Email {
			continue
		}
		rows = append(rows, store.CandidateRow{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		})
	}
	return rows
}
