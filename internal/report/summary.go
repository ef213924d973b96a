package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/hiring-dw/internal/store"
	"github.com/franz/hiring-dw/internal/util"
)

// LoadSummary describes one warehouse load
type LoadSummary struct {
	GeneratedAt time.Time
	Duration    time.Duration
	RunID       string

	SourcePath   string
	DatabasePath string
	EventLogPath string
	SchemaSource string

	SourceRows  int
	HiredRows   int
	FactsLoaded int

	DroppedRows int
	DropReasons []DropCount
	Tables      []store.TableCount
}

// DropCount is the number of rows dropped for one reason
type DropCount struct {
	Reason string
	Count  int
}

// HireRate returns the share of source rows flagged hired, in percent
func (s *LoadSummary) HireRate() float64 {
	if s.SourceRows == 0 {
		return 0
	}
	return 100 * float64(s.HiredRows) / float64(s.SourceRows)
}

// WriteLoadSummary writes the load summary as Markdown
func WriteLoadSummary(summary *LoadSummary, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderLoadSummary(summary)), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// RenderLoadSummary renders the load summary as Markdown
func RenderLoadSummary(summary *LoadSummary) string {
	var md strings.Builder

	md.WriteString("# Hiring Warehouse - Load Summary\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05")))
	if summary.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", summary.RunID))
	}
	if summary.SourcePath != "" {
		md.WriteString(fmt.Sprintf("**Source:** `%s`\n\n", summary.SourcePath))
	}
	if summary.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", summary.DatabasePath))
	}
	if summary.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", summary.EventLogPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Source Rows | %s |\n", util.FormatCount(summary.SourceRows)))
	md.WriteString(fmt.Sprintf("| Hired | %s (%.2f%%) |\n", util.FormatCount(summary.HiredRows), summary.HireRate()))
	md.WriteString(fmt.Sprintf("| Facts Loaded | %s |\n", util.FormatCount(summary.FactsLoaded)))
	if summary.DroppedRows > 0 {
		md.WriteString(fmt.Sprintf("| Rows Dropped | %s |\n", util.FormatCount(summary.DroppedRows)))
	}
	if summary.SchemaSource != "" {
		md.WriteString(fmt.Sprintf("| Schema | %s |\n", summary.SchemaSource))
	}
	if summary.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", summary.Duration.Round(time.Millisecond)))
	}
	md.WriteString("\n")

	if len(summary.Tables) > 0 {
		md.WriteString("## 🗄️ Tables\n\n")
		md.WriteString("| Table | Rows |\n")
		md.WriteString("|-------|------|\n")
		for _, t := range summary.Tables {
			md.WriteString(fmt.Sprintf("| %s | %s |\n", t.Table, util.FormatCount(t.Rows)))
		}
		md.WriteString("\n")
	}

	if len(summary.DropReasons) > 0 {
		md.WriteString("## ⚠️ Dropped Rows\n\n")
		md.WriteString("| Reason | Count |\n")
		md.WriteString("|--------|-------|\n")
		for _, d := range summary.DropReasons {
			md.WriteString(fmt.Sprintf("| %s | %s |\n", d.Reason, util.FormatCount(d.Count)))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by dw - hiring data warehouse*\n")

	return md.String()
}
