package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/franz/hiring-dw/internal/store"
	"github.com/franz/hiring-dw/internal/util"
)

// TopTechnologies caps the technology charts
const TopTechnologies = 15

// DefaultCountries is the country allow-list of the yearly country chart.
// Both US spellings are kept since either may occur in the source.
var DefaultCountries = []string{"United States", "USA", "Brazil", "Colombia", "Ecuador"}

// ManifestFile is written next to the charts
const ManifestFile = "manifest.yaml"

// Config holds reporter configuration
type Config struct {
	Store     *store.Store
	OutDir    string
	Countries []string // nil uses DefaultCountries
	Logger    *EventLogger
	XLSXPath  string // optional workbook export
}

// Reporter renders the fixed set of warehouse charts
type Reporter struct {
	store     *store.Store
	outDir    string
	countries []string
	logger    *EventLogger
	xlsxPath  string
}

// NewReporter creates a new Reporter
func NewReporter(cfg *Config) *Reporter {
	countries := cfg.Countries
	if countries == nil {
		countries = DefaultCountries
	}

	return &Reporter{
		store:     cfg.Store,
		outDir:    cfg.OutDir,
		countries: countries,
		logger:    cfg.Logger,
		xlsxPath:  cfg.XLSXPath,
	}
}

// ChartFile is one rendered chart
type ChartFile struct {
	Name string
	Path string
	Rows int
}

// Result describes a completed report run
type Result struct {
	Charts           []ChartFile
	ManifestPath     string
	WorkbookPath     string
	MissingCountries []string
	Duration         time.Duration
}

// Datasets runs the six reporting queries in chart order
func (r *Reporter) Datasets(ctx context.Context) ([]*Dataset, error) {
	tech, err := r.store.HiresByTechnology(ctx, TopTechnologies)
	if err != nil {
		return nil, err
	}
	years, err := r.store.HiresByYear(ctx)
	if err != nil {
		return nil, err
	}
	seniority, err := r.store.HiresBySeniority(ctx)
	if err != nil {
		return nil, err
	}
	countryYears, err := r.store.HiresByCountryYear(ctx, r.countries)
	if err != nil {
		return nil, err
	}
	rates, err := r.store.HireRateByTechnology(ctx, TopTechnologies)
	if err != nil {
		return nil, err
	}
	scores, err := r.store.AvgScoresBySeniority(ctx)
	if err != nil {
		return nil, err
	}

	return []*Dataset{
		TechnologyHires(tech),
		YearHires(years),
		SeniorityHires(seniority),
		CountryYearHires(countryYears),
		TechnologyHireRate(rates),
		SeniorityScoreAverages(scores),
	}, nil
}

// MissingCountries returns the allow-listed countries absent from dim_country
func (r *Reporter) MissingCountries(ctx context.Context) ([]string, error) {
	known, err := r.store.KeyMap(ctx, store.DimCountry)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0)
	for _, c := range r.countries {
		if _, ok := known[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

// Run renders every chart into the output directory, then writes the
// manifest and, if configured, the workbook
func (r *Reporter) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Charts: make([]ChartFile, 0)}

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	missing, err := r.MissingCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read countries: %w", err)
	}
	result.MissingCountries = missing
	for _, c := range missing {
		util.WarnLog("Country %q from the allow-list is not in dim_country", c)
	}

	datasets, err := r.Datasets(ctx)
	if err != nil {
		r.logger.LogError(EventChart, r.store.Path(), err)
		return nil, fmt.Errorf("failed to run reporting queries: %w", err)
	}

	for _, d := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(r.outDir, d.File())
		err := d.Render(path)
		r.logger.LogChart(d.Name, path, d.Rows(), err)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", d.Name, err)
		}
		if d.Rows() == 0 {
			util.WarnLog("%s: no data, wrote empty chart", d.Name)
		}
		util.DebugLog("Wrote %s (%d rows)", path, d.Rows())

		result.Charts = append(result.Charts, ChartFile{Name: d.Name, Path: path, Rows: d.Rows()})
	}

	manifestPath := filepath.Join(r.outDir, ManifestFile)
	if err := WriteManifest(manifestPath, NewManifest(datasets, r.countries, missing)); err != nil {
		return nil, err
	}
	result.ManifestPath = manifestPath

	if r.xlsxPath != "" {
		if err := WriteWorkbook(r.xlsxPath, datasets); err != nil {
			r.logger.LogError(EventChart, r.xlsxPath, err)
			return nil, err
		}
		result.WorkbookPath = r.xlsxPath
	}

	result.Duration = time.Since(start)
	r.logger.LogComplete("report complete", result.Duration)

	return result, nil
}
