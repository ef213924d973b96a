package store

import "database/sql"

// Dimension names a dimension table with a single natural key column
type Dimension struct {
	Table     string
	IDColumn  string
	KeyColumn string
}

// Dimensions keyed by a natural string value
var (
	DimCountry    = Dimension{Table: "dim_country", IDColumn: "country_id", KeyColumn: "country_name"}
	DimTechnology = Dimension{Table: "dim_technology", IDColumn: "technology_id", KeyColumn: "technology"}
	DimSeniority  = Dimension{Table: "dim_seniority", IDColumn: "seniority_id", KeyColumn: "seniority"}
	DimCandidate  = Dimension{Table: "dim_candidate", IDColumn: "candidate_id", KeyColumn: "email"}
)

// DateRow is one row of dim_date
type DateRow struct {
	DateID    int    // YYYYMMDD
	Date      string // YYYY-MM-DD
	Year      int
	Quarter   int
	Month     int
	Day       int
	IsWeekend bool
}

// CandidateRow is one row of dim_candidate, without its surrogate key
type CandidateRow struct {
	FirstName string
	LastName  string
	Email     string
}

// FactRow is one row of fact_hiring
type FactRow struct {
	CandidateID             int64
	DateID                  int
	CountryID               int64
	TechnologyID            int64
	SeniorityID             int64
	YearsExperience         sql.NullFloat64
	CodeChallengeScore      sql.NullFloat64
	TechnicalInterviewScore sql.NullFloat64
	Hired                   bool
}

// TableCount is the row count of one warehouse table
type TableCount struct {
	Table string
	Rows  int
}

// CategoryCount is a hire count for one dimension label
type CategoryCount struct {
	Label string
	Hires int
}

// YearCount is a hire count for one calendar year
type YearCount struct {
	Year  int
	Hires int
}

// CountryYearCount is a hire count for one (year, country) pair
type CountryYearCount struct {
	Year    int
	Country string
	Hires   int
}

// CategoryRate is a hire rate in percent for one dimension label
type CategoryRate struct {
	Label   string
	RatePct float64
}

// SeniorityScores holds average scores for one seniority level.
// Averages are null when no fact row carries that score.
type SeniorityScores struct {
	Seniority             string
	AvgCodeChallenge      sql.NullFloat64
	AvgTechnicalInterview sql.NullFloat64
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
