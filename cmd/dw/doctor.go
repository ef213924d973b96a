package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/hiring-dw/internal/etl"
	"github.com/franz/hiring-dw/internal/store"
	"github.com/franz/hiring-dw/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the input, schema and warehouse",
	Long: `Run diagnostic checks to ensure dw can operate correctly.

This command checks:
- SQLite version
- Schema file presence (the built-in schema is used when absent)
- Candidates CSV readability and required columns
- Warehouse integrity and row counts
- Chart output directory permissions

Use this command to troubleshoot issues before running dw load or dw report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	// Doctor-specific flags
	doctorCmd.Flags().String("csv", DefaultCSVPath, "candidates CSV file to check")
	doctorCmd.Flags().String("out", DefaultPlotsDir, "chart output directory to check")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== dw Doctor - System Diagnostics ===")
	util.InfoLog("")

	ctx := cmd.Context()
	results := []checkResult{}

	// 1. Check SQLite
	results = append(results, checkSQLite())

	// 2. Check schema file
	schemaPath := viper.GetString("schema")
	if schemaPath == "" {
		schemaPath = DefaultSchemaPath
	}
	results = append(results, checkSchema(schemaPath))

	// 3. Check source CSV
	results = append(results, checkSource(GetConfigString(cmd, "csv", "csv")))

	// 4. Check warehouse
	results = append(results, checkDatabase(ctx, GetConfigString(cmd, "db", "db")))

	// 5. Check chart output directory
	results = append(results, checkOutputDirectory(GetConfigString(cmd, "out", "out")))

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running dw.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! Ready to load and report.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is compiled in, so only the version is checked
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkSchema verifies the schema file, falling back to the built-in schema
func checkSchema(path string) checkResult {
	_, embedded, err := store.LoadSchema(path)
	if err != nil {
		return checkResult{
			name:    "Schema",
			error:   true,
			message: err.Error(),
		}
	}

	if embedded {
		return checkResult{
			name:    "Schema",
			warning: true,
			message: fmt.Sprintf("%s not found, the built-in schema will be used", path),
		}
	}

	return checkResult{
		name:    "Schema",
		message: path,
	}
}

// checkSource verifies the CSV is readable and has every required column
func checkSource(path string) checkResult {
	records, err := etl.ReadCSV(path)
	if err != nil {
		var malformed *util.MalformedInputError
		if errors.As(err, &malformed) && len(malformed.Missing) > 0 {
			return checkResult{
				name:    "Source CSV",
				error:   true,
				message: fmt.Sprintf("%s is missing columns: %s", path, strings.Join(malformed.Missing, ", ")),
			}
		}
		return checkResult{
			name:    "Source CSV",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	if len(records) == 0 {
		return checkResult{
			name:    "Source CSV",
			warning: true,
			message: fmt.Sprintf("%s has a header but no rows", path),
		}
	}

	return checkResult{
		name:    "Source CSV",
		message: fmt.Sprintf("%s (%s rows)", path, util.FormatCount(len(records))),
	}
}

// checkDatabase verifies warehouse accessibility
func checkDatabase(ctx context.Context, dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Warehouse",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	// Check if database exists
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Warehouse",
				warning: true,
				message: fmt.Sprintf("%s does not exist yet (run dw load)", dbPath),
			}
		}
		return checkResult{
			name:    "Warehouse",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	// Check if it's a regular file
	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Warehouse",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.OpenReadOnly(dbPath)
	if err != nil {
		return checkResult{
			name:    "Warehouse",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(ctx); err != nil {
		return checkResult{
			name:    "Warehouse",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	if err := db.VerifySchema(ctx); err != nil {
		return checkResult{
			name:    "Warehouse",
			error:   true,
			message: err.Error(),
		}
	}

	facts, err := db.CountRows(ctx, "fact_hiring")
	if err != nil {
		return checkResult{
			name:    "Warehouse",
			error:   true,
			message: fmt.Sprintf("cannot count facts: %v", err),
		}
	}

	size := util.FormatBytes(info.Size())
	if facts == 0 {
		return checkResult{
			name:    "Warehouse",
			warning: true,
			message: fmt.Sprintf("%s (%s) has no facts", dbPath, size),
		}
	}

	return checkResult{
		name:    "Warehouse",
		message: fmt.Sprintf("%s (%s, %s facts)", dbPath, size, util.FormatCount(facts)),
	}
}

// checkOutputDirectory verifies the chart directory is writable
func checkOutputDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Output directory",
				message: fmt.Sprintf("%s (will be created)", path),
			}
		}
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	// Check write permission by creating a temp file
	testFile := filepath.Join(path, ".dw_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Output directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}
