package etl

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/franz/hiring-dw/internal/util"
)

// Delimiter is the field separator of the hiring CSV export
const Delimiter = ';'

// Source column names after header normalization
const (
	ColFirstName               = "first_name"
	ColLastName                = "last_name"
	ColEmail                   = "email"
	ColCountry                 = "country"
	ColTechnology              = "technology"
	ColSeniority               = "seniority"
	ColApplicationDate         = "application_date"
	ColYOE                     = "yoe"
	ColCodeChallengeScore      = "code_challenge_score"
	ColTechnicalInterviewScore = "technical_interview_score"
)

// RequiredColumns must all be present in the CSV header
var RequiredColumns = []string{
	ColFirstName,
	ColLastName,
	ColEmail,
	ColCountry,
	ColApplicationDate,
	ColYOE,
	ColSeniority,
	ColTechnology,
	ColCodeChallengeScore,
	ColTechnicalInterviewScore,
}

// RawRecord is one source row with the required cells as read, untrimmed.
// Line is the 1-based line number in the file (the header is line 1).
type RawRecord struct {
	Line                    int
	FirstName               string
	LastName                string
	Email                   string
	Country                 string
	Technology              string
	Seniority               string
	ApplicationDate         string
	YOE                     string
	CodeChallengeScore      string
	TechnicalInterviewScore string
}

// NormalizeHeader lower-cases and trims a column name and replaces spaces
// with underscores ("Code Challenge Score" -> "code_challenge_score")
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// ReadCSV reads the hiring CSV at path
func ReadCSV(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &util.MalformedInputError{Path: path, Err: err}
	}
	defer f.Close()

	return ParseCSV(f, path)
}

// ParseCSV reads semicolon-delimited hiring records from r. name is used in
// error messages only. A header lacking any required column is rejected.
func ParseCSV(r io.Reader, name string) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &util.MalformedInputError{Path: name, Missing: RequiredColumns}
	}
	if err != nil {
		return nil, &util.MalformedInputError{Path: name, Err: err}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &util.MalformedInputError{Path: name, Missing: missing}
	}

	cell := func(fields []string, col string) string {
		i := index[col]
		if i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	records := make([]RawRecord, 0)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &util.MalformedInputError{Path: name, Err: err}
		}

		line, _ := reader.FieldPos(0)
		if isBlank(fields) {
			continue
		}

		records = append(records, RawRecord{
			Line:                    line,
			FirstName:               cell(fields, ColFirstName),
			LastName:                cell(fields, ColLastName),
			Email:                   cell(fields, ColEmail),
			Country:                 cell(fields, ColCountry),
			Technology:              cell(fields, ColTechnology),
			Seniority:               cell(fields, ColSeniority),
			ApplicationDate:         cell(fields, ColApplicationDate),
			YOE:                     cell(fields, ColYOE),
			CodeChallengeScore:      cell(fields, ColCodeChallengeScore),
			TechnicalInterviewScore: cell(fields, ColTechnicalInterviewScore),
		})
	}

	return records, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
