package etl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/franz/hiring-dw/internal/report"
	"github.com/franz/hiring-dw/internal/store"
	"github.com/franz/hiring-dw/internal/util"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

const totalStages = 7

// Config holds loader configuration
type Config struct {
	CSVPath      string
	DBPath       string
	SchemaPath   string // DDL file; the embedded schema is used when absent
	Logger       *report.EventLogger
	RunID        string
	ShowProgress bool
	Strict       bool // dropped fact rows fail the run
}

// Loader rebuilds the warehouse from the hiring CSV
type Loader struct {
	csvPath      string
	dbPath       string
	schemaPath   string
	logger       *report.EventLogger
	runID        string
	showProgress bool
	strict       bool
}

// New creates a new Loader
func New(cfg *Config) *Loader {
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Loader{
		csvPath:      cfg.CSVPath,
		dbPath:       cfg.DBPath,
		schemaPath:   cfg.SchemaPath,
		logger:       cfg.Logger,
		runID:        runID,
		showProgress: cfg.ShowProgress,
		strict:       cfg.Strict,
	}
}

// Result describes a completed load
type Result struct {
	RunID          string
	SourceRows     int
	HiredRows      int
	SchemaEmbedded bool
	Dimensions     *Dimensions
	FactsLoaded    int
	Drops          *DropReport
	Counts         []store.TableCount
	Duration       time.Duration
}

// Count returns the final row count of table, or 0 if it was not counted
func (r *Result) Count(table string) int {
	for _, c := range r.Counts {
		if c.Table == table {
			return c.Rows
		}
	}
	return 0
}

// Run executes the load. Input problems fail before the store is touched.
// When the load completes but its outcome is not acceptable (no facts from a
// non-empty source, or drops in strict mode) both the result and an error are
// returned.
func (l *Loader) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: l.runID}

	l.stage(1, "Reading CSV: %s", l.csvPath)
	raw, err := ReadCSV(l.csvPath)
	if err != nil {
		l.logger.LogError(report.EventStage, l.csvPath, err)
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	result.SourceRows = len(raw)
	util.DebugLog("Read %s source rows", util.FormatCount(len(raw)))

	l.stage(2, "Normalizing data types")
	records := Normalize(raw)

	l.stage(3, "Creating HIRED flag (rule: ≥%g on both scores)", HireThreshold)
	result.HiredRows = DeriveHired(records)
	util.DebugLog("Hired: %s of %s rows", util.FormatCount(result.HiredRows), util.FormatCount(len(records)))

	ddl, embedded, err := store.LoadSchema(l.schemaPath)
	if err != nil {
		l.logger.LogError(report.EventStage, l.schemaPath, err)
		return nil, fmt.Errorf("%w: %w", util.ErrInvalidConfig, err)
	}
	result.SchemaEmbedded = embedded
	if embedded {
		util.WarnLog("Schema file %s not found, using built-in schema", l.schemaPath)
	}

	l.stage(4, "Creating SQLite database: %s", l.dbPath)
	s, err := store.Create(ctx, l.dbPath, ddl)
	if err != nil {
		l.logger.LogError(report.EventStage, l.dbPath, err)
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}
	defer s.Close()

	l.stage(5, "Loading dimension tables")
	dims := BuildDimensions(records)
	result.Dimensions = dims
	if err := l.loadDimensions(ctx, s, dims); err != nil {
		return nil, err
	}

	lookups, err := ReadLookups(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to read dimension keys: %w", err)
	}

	l.stage(6, "Loading fact table")
	facts, drops := ResolveFacts(records, lookups)
	result.Drops = drops
	l.reportDrops(drops)

	loadStart := time.Now()
	loaded, err := s.InsertFacts(ctx, facts, l.progress(len(facts)))
	if err != nil {
		l.logger.LogError(report.EventLoad, "fact_hiring", err)
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}
	result.FactsLoaded = loaded
	l.logger.LogTableLoad("fact_hiring", loaded, time.Since(loadStart))

	l.stage(7, "Validating row counts")
	counts, err := s.RowCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	result.Counts = counts
	for _, c := range counts {
		l.logger.LogValidate(c.Table, c.Rows)
	}

	result.Duration = time.Since(start)
	l.logger.LogComplete("load complete", result.Duration)

	return result, l.verdict(result)
}

func (l *Loader) stage(step int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	util.StageLog(step, totalStages, "%s", msg)
	l.logger.LogStage(step, msg)
}

func (l *Loader) loadDimensions(ctx context.Context, s *store.Store, dims *Dimensions) error {
	t := time.Now()
	if err := s.InsertDates(ctx, dims.Dates); err != nil {
		return fmt.Errorf("failed to load dim_date: %w", err)
	}
	l.logger.LogTableLoad("dim_date", len(dims.Dates), time.Since(t))

	named := []struct {
		dim    store.Dimension
		values []string
	}{
		{store.DimCountry, dims.Countries},
		{store.DimTechnology, dims.Technologies},
		{store.DimSeniority, dims.Seniorities},
	}
	for _, n := range named {
		t = time.Now()
		if err := s.InsertNames(ctx, n.dim, n.values); err != nil {
			return fmt.Errorf("failed to load %s: %w", n.dim.Table, err)
		}
		l.logger.LogTableLoad(n.dim.Table, len(n.values), time.Since(t))
	}

	t = time.Now()
	if err := s.InsertCandidates(ctx, dims.Candidates); err != nil {
		return fmt.Errorf("failed to load dim_candidate: %w", err)
	}
	l.logger.LogTableLoad("dim_candidate", len(dims.Candidates), time.Since(t))

	return nil
}

// ReadLookups reads back the natural -> surrogate key maps of a loaded store
func ReadLookups(ctx context.Context, s *store.Store) (*Lookups, error) {
	dates, err := s.DateIDs(ctx)
	if err != nil {
		return nil, err
	}

	lookups := &Lookups{Dates: dates}
	targets := []struct {
		dim  store.Dimension
		dest *map[string]int64
	}{
		{store.DimCountry, &lookups.Countries},
		{store.DimTechnology, &lookups.Technologies},
		{store.DimSeniority, &lookups.Seniorities},
		{store.DimCandidate, &lookups.Candidates},
	}
	for _, t := range targets {
		m, err := s.KeyMap(ctx, t.dim)
		if err != nil {
			return nil, err
		}
		*t.dest = m
	}

	return lookups, nil
}

func (l *Loader) reportDrops(drops *DropReport) {
	byReason := make(map[string]int, len(drops.ByReason))
	for reason, n := range drops.ByReason {
		byReason[string(reason)] = n
	}
	l.logger.LogDropSummary(drops.Total(), byReason)

	if drops.Total() == 0 {
		util.DebugLog("%s", drops)
		return
	}

	util.WarnLog("%s", drops)
	for _, d := range drops.Rows {
		util.DebugLog("  line %d dropped: %s", d.Line, d.Reason)
		l.logger.LogDrop(d.Line, string(d.Reason))
	}
}

func (l *Loader) progress(total int) func(int) {
	if !l.showProgress || total == 0 {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Loading facts"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	done := 0
	return func(n int) {
		bar.Add(n)
		done += n
		if done >= total {
			bar.Finish()
		}
	}
}

// verdict classifies a completed load
func (l *Loader) verdict(r *Result) error {
	if r.SourceRows > 0 && r.FactsLoaded == 0 {
		return fmt.Errorf("%d source rows, 0 facts (%s): %w", r.SourceRows, r.Drops, util.ErrNoFactsLoaded)
	}
	if l.strict && r.Drops.Total() > 0 {
		return fmt.Errorf("%s: %w", r.Drops, util.ErrPartialLoad)
	}
	return nil
}
