package etl

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/franz/hiring-dw/internal/store"
)

// DropReason explains why a source row produced no fact row
type DropReason string

const (
	DropInvalidDate       DropReason = "invalid_date"
	DropUnknownCandidate  DropReason = "unknown_candidate"
	DropUnknownCountry    DropReason = "unknown_country"
	DropUnknownTechnology DropReason = "unknown_technology"
	DropUnknownSeniority  DropReason = "unknown_seniority"
)

// Lookups maps natural keys to the surrogate keys assigned by the store
type Lookups struct {
	Dates        map[int]bool
	Countries    map[string]int64
	Technologies map[string]int64
	Seniorities  map[string]int64
	Candidates   map[string]int64 // by normalized email
}

// DroppedRow records one source row excluded from the fact table
type DroppedRow struct {
	Line   int
	Email  string
	Reason DropReason
}

// DropReport summarises excluded rows
type DropReport struct {
	Rows     []DroppedRow
	ByReason map[DropReason]int
}

// Total returns the number of dropped rows
func (d *DropReport) Total() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Reasons returns the drop reasons that occurred, sorted by name
func (d *DropReport) Reasons() []DropReason {
	if d == nil {
		return nil
	}
	reasons := make([]DropReason, 0, len(d.ByReason))
	for r := range d.ByReason {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// String renders "rows dropped: N, reasons: {a: 1, b: 2}"
func (d *DropReport) String() string {
	parts := make([]string, 0)
	for _, r := range d.Reasons() {
		parts = append(parts, fmt.Sprintf("%s: %d", r, d.ByReason[r]))
	}
	return fmt.Sprintf("rows dropped: %d, reasons: {%s}", d.Total(), strings.Join(parts, ", "))
}

func (d *DropReport) add(r Record, reason DropReason) {
	d.Rows = append(d.Rows, DroppedRow{Line: r.Line, Email: r.Email, Reason: reason})
	d.ByReason[reason]++
}

// ResolveFacts turns normalized records into fact rows using the lookups.
// Records whose date or any natural key cannot be resolved are dropped and
// reported; the first failing key is the reported reason.
func ResolveFacts(records []Record, lookups *Lookups) ([]store.FactRow, *DropReport) {
	drops := &DropReport{ByReason: make(map[DropReason]int)}
	facts := make([]store.FactRow, 0, len(records))

	for _, r := range records {
		if !r.HasDate {
			drops.add(r, DropInvalidDate)
			continue
		}
		dateID := DateID(r.ApplicationDate)
		if !lookups.Dates[dateID] {
			drops.add(r, DropInvalidDate)
			continue
		}

		candidateID, ok := lookup(lookups.Candidates, r.Email)
		if !ok {
			drops.add(r, DropUnknownCandidate)
			continue
		}
		countryID, ok := lookup(lookups.Countries, r.Country)
		if !ok {
			drops.add(r, DropUnknownCountry)
			continue
		}
		technologyID, ok := lookup(lookups.Technologies, r.Technology)
		if !ok {
			drops.add(r, DropUnknownTechnology)
			continue
		}
		seniorityID, ok := lookup(lookups.Seniorities, r.Seniority)
		if !ok {
			drops.add(r, DropUnknownSeniority)
			continue
		}

		facts = append(facts, store.FactRow{
			CandidateID:             candidateID,
			DateID:                  dateID,
			CountryID:               countryID,
			TechnologyID:            technologyID,
			SeniorityID:             seniorityID,
			YearsExperience:         nullFloat(r.YOE),
			CodeChallengeScore:      nullFloat(r.CodeChallengeScore),
			TechnicalInterviewScore: nullFloat(r.TechnicalInterviewScore),
			Hired:                   r.Hired,
		})
	}

	return facts, drops
}

func lookup(m map[string]int64, key string) (int64, bool) {
	if key == "" {
		return 0, false
	}
	id, ok := m[key]
	return id, ok
}

func nullFloat(n Number) sql.NullFloat64 {
	return sql.NullFloat64{Float64: n.Value, Valid: n.Valid}
}
