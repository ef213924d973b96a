package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/franz/hiring-dw/internal/etl"
	"github.com/franz/hiring-dw/internal/report"
	"github.com/franz/hiring-dw/internal/util"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Rebuild the warehouse from the candidates CSV",
	Long: `Rebuild the SQLite warehouse from a semicolon-delimited candidates CSV.

The load runs in seven stages:
1. Read the CSV and check the required columns
2. Normalize dates, numbers, emails and categories
3. Derive the hired flag (both scores at least 7)
4. Replace the warehouse file and apply the schema
5. Load the date, country, technology, seniority and candidate dimensions
6. Resolve keys and load the fact table
7. Report row counts

Rows with an invalid date or an unresolvable key are dropped and reported.
With --strict any dropped row fails the run (exit code 3).`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	// Load-specific flags
	loadCmd.Flags().String("csv", DefaultCSVPath, "candidates CSV file")
	loadCmd.Flags().String("event-log-dir", DefaultEventLogDir, "directory for the JSONL event log (empty disables it)")
	loadCmd.Flags().String("summary", "", "write a Markdown load summary to this path")
	loadCmd.Flags().Bool("strict", false, "fail when any source row is dropped")
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := resolveLoadConfig(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := openEventLogger(cfg.EventLogDir, runID)
	if err != nil {
		return err
	}
	defer logger.Close()

	util.InfoLog("=== Loading Hiring Warehouse ===")
	util.DebugLog("Run: %s", runID)

	loader := etl.New(&etl.Config{
		CSVPath:      cfg.CSVPath,
		DBPath:       cfg.DBPath,
		SchemaPath:   cfg.SchemaPath,
		Logger:       logger,
		RunID:        runID,
		ShowProgress: util.ShowProgress(),
		Strict:       cfg.Strict,
	})

	result, runErr := loader.Run(cmd.Context())
	if result == nil {
		return runErr
	}

	fmt.Fprintln(os.Stdout, "LOAD COMPLETE")
	fmt.Fprintf(os.Stdout, "ROW COUNTS: %s\n", formatCounts(result))

	if cfg.SummaryPath != "" {
		summary := newLoadSummary(result, cfg, logger.Path())
		if err := report.WriteLoadSummary(summary, cfg.SummaryPath); err != nil {
			return err
		}
		util.InfoLog("Summary written to: %s", cfg.SummaryPath)
	}

	if runErr != nil {
		return runErr
	}

	util.SuccessLog("Loaded %s facts from %s rows in %s",
		util.FormatCount(result.FactsLoaded),
		util.FormatCount(result.SourceRows),
		result.Duration.Round(time.Millisecond))
	return nil
}

// formatCounts renders "{dim_date: 1646, ...}" in table order
func formatCounts(result *etl.Result) string {
	parts := make([]string, 0, len(result.Counts))
	for _, c := range result.Counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Table, c.Rows))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func newLoadSummary(result *etl.Result, cfg *LoadConfig, eventLogPath string) *report.LoadSummary {
	summary := &report.LoadSummary{
		GeneratedAt:  time.Now(),
		Duration:     result.Duration,
		RunID:        result.RunID,
		SourcePath:   cfg.CSVPath,
		DatabasePath: cfg.DBPath,
		EventLogPath: eventLogPath,
		SchemaSource: cfg.SchemaPath,
		SourceRows:   result.SourceRows,
		HiredRows:    result.HiredRows,
		FactsLoaded:  result.FactsLoaded,
		DroppedRows:  result.Drops.Total(),
		Tables:       result.Counts,
	}
	if result.SchemaEmbedded {
		summary.SchemaSource = "built-in"
	}

	for _, reason := range result.Drops.Reasons() {
		summary.DropReasons = append(summary.DropReasons, report.DropCount{
			Reason: string(reason),
			Count:  result.Drops.ByReason[reason],
		})
	}
	return summary
}
