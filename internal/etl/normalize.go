package etl

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// HireThreshold is the minimum score required on both the code challenge
// and the technical interview for a candidate to count as hired
const HireThreshold = 7.0

// dateLayouts are tried in order when parsing application_date
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// Number is a parsed numeric cell; Valid is false when the cell was empty
// or not a finite number
type Number struct {
	Value float64
	Valid bool
}

// Record is a typed and normalized source row
type Record struct {
	Line                    int
	FirstName               string
	LastName                string
	Email                   string // trimmed, lower-cased; "" when missing
	Country                 string // trimmed; "" when missing
	Technology              string
	Seniority               string
	ApplicationDate         time.Time
	HasDate                 bool
	YOE                     Number
	CodeChallengeScore      Number
	TechnicalInterviewScore Number
	Hired                   bool
}

// ParseDate parses an application date. Unparseable values report false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a numeric cell. Empty, non-numeric, NaN and infinite
// values are missing.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// IsHired applies the hiring rule: both scores present and at least
// HireThreshold. A missing score is a non-hire.
func IsHired(codeChallenge, technicalInterview Number) bool {
	return codeChallenge.Valid && technicalInterview.Valid &&
		codeChallenge.Value >= HireThreshold &&
		technicalInterview.Value >= HireThreshold
}

// NormalizeEmail returns the case-insensitive identity key for a candidate
func NormalizeEmail(s string) string {
	return strings.ToLower(NormalizeCategory(s))
}

// NormalizeCategory trims a categorical value (country, technology,
// seniority) and puts it in Unicode NFC form
func NormalizeCategory(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Normalize types and cleans raw rows. It never fails: unparseable cells
// become missing values that are filtered out when facts are resolved.
func Normalize(raw []RawRecord) []Record {
	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		date, ok := ParseDate(r.ApplicationDate)

		rec := Record{
			Line:                    r.Line,
			FirstName:               strings.TrimSpace(r.FirstName),
			LastName:                strings.TrimSpace(r.LastName),
			Email:                   NormalizeEmail(r.Email),
			Country:                 NormalizeCategory(r.Country),
			Technology:              NormalizeCategory(r.Technology),
			Seniority:               NormalizeCategory(r.Seniority),
			ApplicationDate:         date,
			HasDate:                 ok,
			YOE:                     ParseNumber(r.YOE),
			CodeChallengeScore:      ParseNumber(r.CodeChallengeScore),
			TechnicalInterviewScore: ParseNumber(r.TechnicalInterviewScore),
		}
		records = append(records, rec)
	}
	return records
}

// DeriveHired sets the Hired flag on every record
func DeriveHired(records []Record) int {
	hired := 0
	for i := range records {
		records[i].Hired = IsHired(records[i].CodeChallengeScore, records[i].TechnicalInterviewScore)
		if records[i].Hired {
			hired++
		}
	}
	return hired
}

// DateID encodes a date as its YYYYMMDD integer
func DateID(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
