package store

import (
	"context"
	"database/sql"
	"strings"
)

// HiresByTechnology counts hired candidates per technology, most hires first
func (s *Store) HiresByTechnology(ctx context.Context, limit int) ([]CategoryCount, error) {
	return s.categoryCounts(ctx, `
		SELECT t.technology, COUNT(*) AS hires
		FROM fact_hiring f
		JOIN dim_technology t ON f.technology_id = t.technology_id
		WHERE f.hired = 1
		GROUP BY t.technology
		ORDER BY hires DESC, t.technology
		LIMIT ?
	`, limit)
}

// HiresBySeniority counts hired candidates per seniority level, most hires first
func (s *Store) HiresBySeniority(ctx context.Context) ([]CategoryCount, error) {
	return s.categoryCounts(ctx, `
		SELECT s.seniority, COUNT(*) AS hires
		FROM fact_hiring f
		JOIN dim_seniority s ON f.seniority_id = s.seniority_id
		WHERE f.hired = 1
		GROUP BY s.seniority
		ORDER BY hires DESC, s.seniority
	`)
}

func (s *Store) categoryCounts(ctx context.Context, query string, args ...interface{}) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("failed to run report query", err)
	}
	defer rows.Close()

	result := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Label, &c.Hires); err != nil {
			return nil, storeErr("failed to scan report row", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read report rows", err)
	}
	return result, nil
}

// HiresByYear counts hired candidates per application year, oldest first
func (s *Store) HiresByYear(ctx context.Context) ([]YearCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.year, COUNT(*) AS hires
		FROM fact_hiring f
		JOIN dim_date d ON f.date_id = d.date_id
		WHERE f.hired = 1
		GROUP BY d.year
		ORDER BY d.year
	`)
	if err != nil {
		return nil, storeErr("failed to run hires by year", err)
	}
	defer rows.Close()

	result := make([]YearCount, 0)
	for rows.Next() {
		var y YearCount
		if err := rows.Scan(&y.Year, &y.Hires); err != nil {
			return nil, storeErr("failed to scan hires by year", err)
		}
		result = append(result, y)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read hires by year", err)
	}
	return result, nil
}

// HiresByCountryYear counts hired candidates per (year, country) for the
// named countries only. Names are matched exactly as stored.
func (s *Store) HiresByCountryYear(ctx context.Context, countries []string) ([]CountryYearCount, error) {
	result := make([]CountryYearCount, 0)
	if len(countries) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(countries)), ", ")
	args := make([]interface{}, len(countries))
	for i, c := range countries {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.year, c.country_name, COUNT(*) AS hires
		FROM fact_hiring f
		JOIN dim_date d ON f.date_id = d.date_id
		JOIN dim_country c ON f.country_id = c.country_id
		WHERE f.hired = 1
		  AND c.country_name IN (`+placeholders+`)
		GROUP BY d.year, c.country_name
		ORDER BY d.year, c.country_name
	`, args...)
	if err != nil {
		return nil, storeErr("failed to run hires by country", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r CountryYearCount
		if err := rows.Scan(&r.Year, &r.Country, &r.Hires); err != nil {
			return nil, storeErr("failed to scan hires by country", err)
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read hires by country", err)
	}
	return result, nil
}

// HireRateByTechnology returns the share of all applicants hired per
// technology as a percentage rounded to two decimals, highest first
func (s *Store) HireRateByTechnology(ctx context.Context, limit int) ([]CategoryRate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.technology,
		       ROUND(100.0 * AVG(f.hired), 2) AS hire_rate_pct
		FROM fact_hiring f
		JOIN dim_technology t ON f.technology_id = t.technology_id
		GROUP BY t.technology
		ORDER BY hire_rate_pct DESC, t.technology
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, storeErr("failed to run hire rate by technology", err)
	}
	defer rows.Close()

	result := make([]CategoryRate, 0)
	for rows.Next() {
		var r CategoryRate
		if err := rows.Scan(&r.Label, &r.RatePct); err != nil {
			return nil, storeErr("failed to scan hire rate", err)
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read hire rates", err)
	}
	return result, nil
}

// AvgScoresBySeniority averages both interview scores per seniority level,
// ordered by the code challenge average, highest first
func (s *Store) AvgScoresBySeniority(ctx context.Context) ([]SeniorityScores, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.seniority,
		       ROUND(AVG(f.code_challenge_score), 2) AS avg_code_challenge,
		       ROUND(AVG(f.technical_interview_score), 2) AS avg_technical_interview
		FROM fact_hiring f
		JOIN dim_seniority s ON f.seniority_id = s.seniority_id
		GROUP BY s.seniority
		ORDER BY avg_code_challenge DESC, s.seniority
	`)
	if err != nil {
		return nil, storeErr("failed to run average scores", err)
	}
	defer rows.Close()

	result := make([]SeniorityScores, 0)
	for rows.Next() {
		var r SeniorityScores
		var code, tech sql.NullFloat64
		if err := rows.Scan(&r.Seniority, &code, &tech); err != nil {
			return nil, storeErr("failed to scan average scores", err)
		}
		r.AvgCodeChallenge = code
		r.AvgTechnicalInterview = tech
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read average scores", err)
	}
	return result, nil
}
