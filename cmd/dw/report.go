package main

import (
	"fmt"
	"os"

	"github.com/franz/hiring-dw/internal/report"
	"github.com/franz/hiring-dw/internal/store"
	"github.com/franz/hiring-dw/internal/util"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the hiring charts from the warehouse",
	Long: `Render the hiring charts from an existing warehouse.

Charts written to the output directory:
- hires_by_technology.png          hires per technology (top 15)
- hires_by_year.png                hires per year
- hires_by_seniority.png           hires per seniority level
- hires_by_country_over_years.png  yearly hires for the configured countries
- hire_rate_by_technology.png      hire rate (%) per technology (top 15)
- avg_scores_by_seniority.png      average scores per seniority level

A manifest.yaml with the plotted values is written next to the charts.
The warehouse is opened read-only.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("out", DefaultPlotsDir, "output directory for the charts")
	reportCmd.Flags().String("xlsx", "", "also export the chart data to this .xlsx workbook")
	reportCmd.Flags().String("event-log-dir", DefaultEventLogDir, "directory for the JSONL event log (empty disables it)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveReportConfig(cmd)
	if err != nil {
		return err
	}

	util.InfoLog("=== Generating Hiring Charts ===")
	util.InfoLog("Database: %s", cfg.DBPath)

	db, err := store.OpenReadOnly(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer db.Close()

	logger, err := openEventLogger(cfg.EventLogDir, uuid.NewString())
	if err != nil {
		return err
	}
	defer logger.Close()

	reporter := report.NewReporter(&report.Config{
		Store:     db,
		OutDir:    cfg.OutDir,
		Countries: cfg.Countries,
		Logger:    logger,
		XLSXPath:  cfg.XLSXPath,
	})

	result, err := reporter.Run(cmd.Context())
	if err != nil {
		return err
	}

	for _, c := range result.Charts {
		util.DebugLog("  %s (%d rows)", c.Path, c.Rows)
	}
	if result.WorkbookPath != "" {
		util.InfoLog("Workbook written to: %s", result.WorkbookPath)
	}

	fmt.Fprintf(os.Stdout, "Charts successfully generated in: %s\n", cfg.OutDir)
	return nil
}
