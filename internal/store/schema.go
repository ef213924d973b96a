package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultSchema is the star schema DDL compiled into the binary.
// It is used when no schema file exists at the configured path.
//
//go:embed schema.sql
var DefaultSchema string

// Tables lists every warehouse table in reporting order
var Tables = []string{
	"dim_date",
	"dim_country",
	"dim_technology",
	"dim_seniority",
	"dim_candidate",
	"fact_hiring",
}

// LoadSchema reads DDL from path. When the file does not exist the embedded
// DefaultSchema is returned and embedded is true.
func LoadSchema(path string) (ddl string, embedded bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSchema, true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", false, fmt.Errorf("schema %s is empty", path)
	}
	return string(data), false, nil
}

// ApplySchema executes the DDL script verbatim and commits it
func (s *Store) ApplySchema(ctx context.Context, ddl string) error {
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return storeErr("failed to apply schema", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.VerifySchema(ctx)
}

// VerifySchema checks that every warehouse table exists
func (s *Store) VerifySchema(ctx context.Context) error {
	var missing []string
	for _, table := range Tables {
		var count int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			return storeErr("failed to inspect schema", err)
		}
		if count == 0 {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return storeErr("schema is incomplete",
			fmt.Errorf("missing tables: %s", strings.Join(missing, ", ")))
	}
	return nil
}
