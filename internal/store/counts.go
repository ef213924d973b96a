package store

import (
	"context"
	"fmt"
)

// CountRows returns the number of rows in a warehouse table
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if !isWarehouseTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	if err != nil {
		return 0, storeErr(fmt.Sprintf("failed to count %s", table), err)
	}
	return n, nil
}

// RowCounts returns the row count of every warehouse table in Tables order
func (s *Store) RowCounts(ctx context.Context) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		n, err := s.CountRows(ctx, table)
		if err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

func isWarehouseTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}
