package postgres

import (
	"context"
	"database/sql"
	"errors"

	"athlete-clinical-history/internal/domain/cases"
)

type CasesRepo struct {
	db *sql.DB
}

func NewCasesRepo(db *sql.DB) *CasesRepo {
	return &CasesRepo{db: db}
}

func (r *CasesRepo) Create(ctx context.Context, c cases.Case) (cases.Case, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO cases (
			athlete_id, clinician_id, title, diagnosis, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		c.AthleteID,
		c.ClinicianID,
		c.Title,
		c.Diagnosis,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err := row.Scan(&c.ID); err != nil {
		return cases.Case{}, err
	}
	return c, nil
}

func (r *CasesRepo) GetByID(ctx context.Context, id int64) (cases.Case, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, athlete_id, clinician_id, title, diagnosis, status,
			created_at, updated_at
		FROM cases
		WHERE id = $1
	`, id)

	var c cases.Case
	if err := row.Scan(
		&c.ID,
		&c.AthleteID,
		&c.ClinicianID,
		&c.Title,
		&c.Diagnosis,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cases.Case{}, cases.ErrNotFound
		}
		return cases.Case{}, err
	}
	return c, nil
}

func (r *CasesRepo) ListByAthlete(ctx context.Context, athleteID int64) ([]cases.Case, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, athlete_id, clinician_id, title, diagnosis, status,
			created_at, updated_at
		FROM cases
		WHERE athlete_id = $1
		ORDER BY id ASC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func (r *CasesRepo) UpdateStatus(ctx context.Context, id int64, status cases.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cases
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cases.ErrNotFound
	}
	return nil
}

func (r *CasesRepo) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]cases.Case, error) {
	if len(ids) == 0 {
		return []cases.Case{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, athlete_id, clinician_id, title, diagnosis, status,
			created_at, updated_at
		FROM cases
		WHERE id = ANY($1) AND athlete_id = $2
		ORDER BY id ASC
	`, ids, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func collectCases(rows *sql.Rows) ([]cases.Case, error) {
	out := make([]cases.Case, 0)
	for rows.Next() {
		var c cases.Case
		if err := rows.Scan(
			&c.ID,
			&c.AthleteID,
			&c.ClinicianID,
			&c.Title,
			&c.Diagnosis,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
