package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertDates appends rows to dim_date
func (s *Store) InsertDates(ctx context.Context, rows []DateRow) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dim_date (date_id, date, year, quarter, month, day, is_weekend)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return storeErr("failed to prepare dim_date insert", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			_, err := stmt.ExecContext(ctx, r.DateID, r.Date, r.Year, r.Quarter, r.Month, r.Day, boolToInt(r.IsWeekend))
			if err != nil {
				return storeErr(fmt.Sprintf("failed to insert date %d", r.DateID), err)
			}
		}
		return nil
	})
}

// InsertNames appends natural key values to a single-key dimension in the
// given order. Surrogate keys are assigned by SQLite.
func (s *Store) InsertNames(ctx context.Context, dim Dimension, names []string) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", dim.Table, dim.KeyColumn)
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return storeErr(fmt.Sprintf("failed to prepare %s insert", dim.Table), err)
		}
		defer stmt.Close()

		for _, name := range names {
			if _, err := stmt.ExecContext(ctx, name); err != nil {
				return storeErr(fmt.Sprintf("failed to insert %s %q", dim.Table, name), err)
			}
		}
		return nil
	})
}

// InsertCandidates appends rows to dim_candidate in the given order
func (s *Store) InsertCandidates(ctx context.Context, rows []CandidateRow) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dim_candidate (first_name, last_name, email)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return storeErr("failed to prepare dim_candidate insert", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.FirstName, r.LastName, r.Email); err != nil {
				return storeErr(fmt.Sprintf("failed to insert candidate %q", r.Email), err)
			}
		}
		return nil
	})
}

// KeyMap reads back a dimension as natural key -> surrogate key
func (s *Store) KeyMap(ctx context.Context, dim Dimension) (map[string]int64, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s", dim.IDColumn, dim.KeyColumn, dim.Table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("failed to query %s", dim.Table), err)
	}
	defer rows.Close()

	keys := make(map[string]int64)
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, storeErr(fmt.Sprintf("failed to scan %s", dim.Table), err)
		}
		keys[key] = id
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr(fmt.Sprintf("failed to read %s", dim.Table), err)
	}
	return keys, nil
}

// DateIDs returns the set of date_id values present in dim_date
func (s *Store) DateIDs(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date_id FROM dim_date")
	if err != nil {
		return nil, storeErr("failed to query dim_date", err)
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("failed to scan dim_date", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read dim_date", err)
	}
	return ids, nil
}

// GetCandidate retrieves a candidate by normalized email
func (s *Store) GetCandidate(ctx context.Context, email string) (*CandidateRow, error) {
	c := &CandidateRow{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(first_name, ''), COALESCE(last_name, ''), email
		FROM dim_candidate WHERE email = ?
	`, email).Scan(&c.FirstName, &c.LastName, &c.Email)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("failed to get candidate", err)
	}

	return c, nil
}
