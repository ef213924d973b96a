package report

import (
	"math"
	"sort"
	"strconv"

	"github.com/franz/hiring-dw/internal/chart"
	"github.com/franz/hiring-dw/internal/store"
)

// ChartKind is the rendering of a dataset
type ChartKind string

const (
	KindBar  ChartKind = "bar"
	KindLine ChartKind = "line"
)

// Dataset is the result of one reporting query shaped for rendering.
// Bar datasets carry exactly one series.
type Dataset struct {
	Name   string // output file stem
	Title  string
	Kind   ChartKind
	XLabel string
	YLabel string
	Labels []string
	Series []chart.Series
	Rotate bool
}

// File returns the chart filename of the dataset
func (d *Dataset) File() string {
	return d.Name + ".png"
}

// Rows returns the number of x-axis entries
func (d *Dataset) Rows() int {
	return len(d.Labels)
}

func categoryDataset(name, title, xLabel string, rows []store.CategoryCount) *Dataset {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
		values[i] = float64(r.Hires)
	}

	return &Dataset{
		Name:   name,
		Title:  title,
		Kind:   KindBar,
		XLabel: xLabel,
		YLabel: "Hires",
		Labels: labels,
		Series: []chart.Series{{Name: "hires", Values: values}},
		Rotate: true,
	}
}

// TechnologyHires shapes hires by technology
func TechnologyHires(rows []store.CategoryCount) *Dataset {
	return categoryDataset("hires_by_technology", "Hires by Technology (Top 15)", "Technology", rows)
}

// SeniorityHires shapes hires by seniority
func SeniorityHires(rows []store.CategoryCount) *Dataset {
	return categoryDataset("hires_by_seniority", "Hires by Seniority", "Seniority", rows)
}

// YearHires shapes hires by year
func YearHires(rows []store.YearCount) *Dataset {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = strconv.Itoa(r.Year)
		values[i] = float64(r.Hires)
	}

	return &Dataset{
		Name:   "hires_by_year",
		Title:  "Hires by Year",
		Kind:   KindBar,
		XLabel: "Year",
		YLabel: "Hires",
		Labels: labels,
		Series: []chart.Series{{Name: "hires", Values: values}},
	}
}

// CountryYearHires pivots (year, country) counts into one series per
// country over ascending years. Countries are sorted by name and years
// without hires for a country are 0.
func CountryYearHires(rows []store.CountryYearCount) *Dataset {
	yearIndex := make(map[int]int)
	var years []int
	countrySet := make(map[string]bool)
	for _, r := range rows {
		if _, ok := yearIndex[r.Year]; !ok {
			yearIndex[r.Year] = 0
			years = append(years, r.Year)
		}
		countrySet[r.Country] = true
	}
	sort.Ints(years)
	for i, y := range years {
		yearIndex[y] = i
	}

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	series := make([]chart.Series, len(countries))
	seriesIndex := make(map[string]int, len(countries))
	for i, c := range countries {
		series[i] = chart.Series{Name: c, Values: make([]float64, len(years))}
		seriesIndex[c] = i
	}
	for _, r := range rows {
		series[seriesIndex[r.Country]].Values[yearIndex[r.Year]] += float64(r.Hires)
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}

	return &Dataset{
		Name:   "hires_by_country_over_years",
		Title:  "Hires by Country (Yearly)",
		Kind:   KindLine,
		XLabel: "Year",
		YLabel: "Hires",
		Labels: labels,
		Series: series,
	}
}

// TechnologyHireRate shapes the hire rate by technology
func TechnologyHireRate(rows []store.CategoryRate) *Dataset {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
		values[i] = r.RatePct
	}

	return &Dataset{
		Name:   "hire_rate_by_technology",
		Title:  "Hire Rate (%) by Technology",
		Kind:   KindBar,
		XLabel: "Technology",
		YLabel: "Hire rate (%)",
		Labels: labels,
		Series: []chart.Series{{Name: "hire_rate_pct", Values: values}},
		Rotate: true,
	}
}

// SeniorityScoreAverages shapes the average scores by seniority. A null
// average becomes NaN and is left out of its line.
func SeniorityScoreAverages(rows []store.SeniorityScores) *Dataset {
	labels := make([]string, len(rows))
	code := make([]float64, len(rows))
	interview := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Seniority
		code[i] = nullToNaN(r.AvgCodeChallenge.Float64, r.AvgCodeChallenge.Valid)
		interview[i] = nullToNaN(r.AvgTechnicalInterview.Float64, r.AvgTechnicalInterview.Valid)
	}

	return &Dataset{
		Name:   "avg_scores_by_seniority",
		Title:  "Average Scores by Seniority",
		Kind:   KindLine,
		XLabel: "Seniority",
		YLabel: "Score",
		Labels: labels,
		Series: []chart.Series{
			{Name: "Code Challenge (avg)", Values: code},
			{Name: "Technical Interview (avg)", Values: interview},
		},
		Rotate: true,
	}
}

func nullToNaN(v float64, valid bool) float64 {
	if !valid {
		return math.NaN()
	}
	return v
}

// Render writes the dataset chart as a PNG at path
func (d *Dataset) Render(path string) error {
	switch d.Kind {
	case KindLine:
		return chart.SaveLines(path, &chart.Lines{
			Title:        d.Title,
			XLabel:       d.XLabel,
			YLabel:       d.YLabel,
			Labels:       d.Labels,
			Series:       d.Series,
			RotateLabels: d.Rotate,
		})
	default:
		var values []float64
		if len(d.Series) > 0 {
			values = d.Series[0].Values
		}
		return chart.SaveBar(path, &chart.Bar{
			Title:        d.Title,
			XLabel:       d.XLabel,
			YLabel:       d.YLabel,
			Labels:       d.Labels,
			Values:       values,
			RotateLabels: d.Rotate,
		})
	}
}
