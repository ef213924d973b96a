package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/hiring-dw/internal/store"
)

const testHeader = "First Name;Last Name;Email;Country;Application Date;YOE;Seniority;Technology;Code Challenge Score;Technical Interview Score"

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckSchema(t *testing.T) {
	dir := t.TempDir()

	result := checkSchema(filepath.Join(dir, "missing.sql"))
	if !result.warning || result.error {
		t.Errorf("missing schema should warn, got %+v", result)
	}

	path := filepath.Join(dir, "schema.sql")
	if err := os.WriteFile(path, []byte(store.DefaultSchema), 0644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	if result := checkSchema(path); result.error || result.warning {
		t.Errorf("schema check failed: %s", result.message)
	}

	empty := filepath.Join(dir, "empty.sql")
	if err := os.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	if result := checkSchema(empty); !result.error {
		t.Error("expected error for empty schema file")
	}
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.csv")
	content := testHeader + "\nAna;Silva;ana@x.com;Brazil;2019-05-01;3;Junior;Go;8;9\n"
	if err := os.WriteFile(valid, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	if result := checkSource(valid); result.error || result.warning {
		t.Errorf("source check failed: %s", result.message)
	}

	headerOnly := filepath.Join(dir, "header.csv")
	if err := os.WriteFile(headerOnly, []byte(testHeader+"\n"), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	if result := checkSource(headerOnly); !result.warning {
		t.Error("expected warning for CSV without rows")
	}

	missing := filepath.Join(dir, "missing.csv")
	if err := os.WriteFile(missing, []byte("Email;Country\n"), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	result := checkSource(missing)
	if !result.error {
		t.Error("expected error for missing columns")
	}
	if !strings.Contains(result.message, "first_name") {
		t.Errorf("expected missing column names in message, got %q", result.message)
	}

	if result := checkSource(filepath.Join(dir, "absent.csv")); !result.error {
		t.Error("expected error for absent CSV")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(context.Background(), dbPath)

	// Not an error - the warehouse is created by dw load
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}
	if !result.warning {
		t.Error("expected warning for missing warehouse")
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "dw.db")

	db, err := store.Create(ctx, dbPath, store.DefaultSchema)
	if err != nil {
		t.Fatalf("failed to create test warehouse: %v", err)
	}
	db.Close()

	// An empty warehouse is valid but warns
	result := checkDatabase(ctx, dbPath)
	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}
	if !result.warning {
		t.Error("expected warning for warehouse without facts")
	}
}

func TestCheckDatabase_NotAWarehouse(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := db.DB().Exec("CREATE TABLE unrelated (id INTEGER)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	db.Close()

	if result := checkDatabase(context.Background(), dbPath); !result.error {
		t.Error("expected error for database without warehouse tables")
	}
}

func TestCheckDatabase_Empty(t *testing.T) {
	result := checkDatabase(context.Background(), "")

	if !result.warning {
		t.Error("expected warning for empty database path")
	}
}

func TestCheckOutputDirectory(t *testing.T) {
	dir := t.TempDir()

	if result := checkOutputDirectory(dir); result.error {
		t.Errorf("output directory check failed: %s", result.message)
	}

	if result := checkOutputDirectory(filepath.Join(dir, "plots")); result.error {
		t.Errorf("missing output directory should not error: %s", result.message)
	}

	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if result := checkOutputDirectory(filePath); !result.error {
		t.Error("expected error when path is a file, not a directory")
	}
}
