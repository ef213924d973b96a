package store

import (
	"context"
	"database/sql"
)

// InsertFacts appends rows to fact_hiring in a single transaction.
// onProgress, when non-nil, is called once per inserted row.
func (s *Store) InsertFacts(ctx context.Context, rows []FactRow, onProgress func(int)) (int, error) {
	inserted := 0

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO fact_hiring (
				candidate_id, date_id, country_id, technology_id, seniority_id,
				years_experience, code_challenge_score, technical_interview_score, hired
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return storeErr("failed to prepare fact_hiring insert", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			_, err := stmt.ExecContext(ctx,
				r.CandidateID, r.DateID, r.CountryID, r.TechnologyID, r.SeniorityID,
				r.YearsExperience, r.CodeChallengeScore, r.TechnicalInterviewScore,
				boolToInt(r.Hired),
			)
			if err != nil {
				return storeErr("failed to insert fact row", err)
			}

			inserted++
			if onProgress != nil {
				onProgress(1)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetFacts returns every fact row in insertion order
func (s *Store) GetFacts(ctx context.Context) ([]FactRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id, date_id, country_id, technology_id, seniority_id,
		       years_experience, code_challenge_score, technical_interview_score, hired
		FROM fact_hiring
		ORDER BY rowid
	`)
	if err != nil {
		return nil, storeErr("failed to query fact_hiring", err)
	}
	defer rows.Close()

	var facts []FactRow
	for rows.Next() {
		var f FactRow
		var hired int
		err := rows.Scan(
			&f.CandidateID, &f.DateID, &f.CountryID, &f.TechnologyID, &f.SeniorityID,
			&f.YearsExperience, &f.CodeChallengeScore, &f.TechnicalInterviewScore, &hired,
		)
		if err != nil {
			return nil, storeErr("failed to scan fact row", err)
		}
		f.Hired = hired == 1
		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read fact_hiring", err)
	}
	return facts, nil
}
