package postgres

import (
	"context"
	"database/sql"
	"errors"

	"athlete-clinical-history/internal/domain/labs"
)

type LabsRepo struct {
	db *sql.DB
}

func NewLabsRepo(db *sql.DB) *LabsRepo {
	return &LabsRepo{db: db}
}

func (r *LabsRepo) Create(ctx context.Context, l labs.Lab) (labs.Lab, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO labs (
			case_id, test_name, result, unit, reference_range,
			collected_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		l.CaseID,
		l.TestName,
		l.Result,
		l.Unit,
		l.ReferenceRange,
		toNullTime(l.CollectedAt),
		l.CreatedAt,
	)
	if err := row.Scan(&l.ID); err != nil {
		return labs.Lab{}, err
	}
	return l, nil
}

func (r *LabsRepo) GetByID(ctx context.Context, id int64) (labs.Lab, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, case_id, test_name, result, unit, reference_range,
			collected_at, created_at
		FROM labs
		WHERE id = $1
	`, id)

	var l labs.Lab
	var ca sql.NullTime
	if err := row.Scan(
		&l.ID,
		&l.CaseID,
		&l.TestName,
		&l.Result,
		&l.Unit,
		&l.ReferenceRange,
		&ca,
		&l.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return labs.Lab{}, labs.ErrNotFound
		}
		return labs.Lab{}, err
	}
	l.CollectedAt = fromNullTime(ca)
	return l, nil
}

func (r *LabsRepo) ListByCase(ctx context.Context, caseID int64) ([]labs.Lab, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, case_id, test_name, result, unit, reference_range,
			collected_at, created_at
		FROM labs
		WHERE case_id = $1
		ORDER BY id ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLabs(rows)
}

// ListByIDsForAthlete resuelve el ownership con un JOIN vía cases.
func (r *LabsRepo) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]labs.Lab, error) {
	if len(ids) == 0 {
		return []labs.Lab{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			l.id, l.case_id, l.test_name, l.result, l.unit, l.reference_range,
			l.collected_at, l.created_at
		FROM labs l
		JOIN cases c ON c.id = l.case_id
		WHERE l.id = ANY($1) AND c.athlete_id = $2
		ORDER BY l.id ASC
	`, ids, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLabs(rows)
}

func collectLabs(rows *sql.Rows) ([]labs.Lab, error) {
	out := make([]labs.Lab, 0)
	for rows.Next() {
		var l labs.Lab
		var ca sql.NullTime
		if err := rows.Scan(
			&l.ID,
			&l.CaseID,
			&l.TestName,
			&l.Result,
			&l.Unit,
			&l.ReferenceRange,
			&ca,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		l.CollectedAt = fromNullTime(ca)
		out = append(out, l)
	}
	return out, rows.Err()
}
