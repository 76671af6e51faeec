package postgres

import (
	"context"
	"database/sql"
	"errors"

	"athlete-clinical-history/internal/domain/exams"
)

type ExamsRepo struct {
	db *sql.DB
}

func NewExamsRepo(db *sql.DB) *ExamsRepo {
	return &ExamsRepo{db: db}
}

func (r *ExamsRepo) Create(ctx context.Context, e exams.Exam) (exams.Exam, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO exams (
			case_id, type, body_part, status,
			performed_at, report_notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		e.CaseID,
		e.Type,
		e.BodyPart,
		e.Status,
		toNullTime(e.PerformedAt),
		e.ReportNotes,
		e.CreatedAt,
	)
	if err := row.Scan(&e.ID); err != nil {
		return exams.Exam{}, err
	}
	return e, nil
}

func (r *ExamsRepo) GetByID(ctx context.Context, id int64) (exams.Exam, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, case_id, type, body_part, status,
			performed_at, report_notes, created_at
		FROM exams
		WHERE id = $1
	`, id)

	var e exams.Exam
	var pa sql.NullTime
	if err := row.Scan(
		&e.ID,
		&e.CaseID,
		&e.Type,
		&e.BodyPart,
		&e.Status,
		&pa,
		&e.ReportNotes,
		&e.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exams.Exam{}, exams.ErrNotFound
		}
		return exams.Exam{}, err
	}
	e.PerformedAt = fromNullTime(pa)
	return e, nil
}

func (r *ExamsRepo) ListByCase(ctx context.Context, caseID int64) ([]exams.Exam, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, case_id, type, body_part, status,
			performed_at, report_notes, created_at
		FROM exams
		WHERE case_id = $1
		ORDER BY id ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// ListByIDsForAthlete resuelve el ownership con un JOIN vía cases.
func (r *ExamsRepo) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]exams.Exam, error) {
	if len(ids) == 0 {
		return []exams.Exam{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			e.id, e.case_id, e.type, e.body_part, e.status,
			e.performed_at, e.report_notes, e.created_at
		FROM exams e
		JOIN cases c ON c.id = e.case_id
		WHERE e.id = ANY($1) AND c.athlete_id = $2
		ORDER BY e.id ASC
	`, ids, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

func collectExams(rows *sql.Rows) ([]exams.Exam, error) {
	out := make([]exams.Exam, 0)
	for rows.Next() {
		var e exams.Exam
		var pa sql.NullTime
		if err := rows.Scan(
			&e.ID,
			&e.CaseID,
			&e.Type,
			&e.BodyPart,
			&e.Status,
			&pa,
			&e.ReportNotes,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.PerformedAt = fromNullTime(pa)
		out = append(out, e)
	}
	return out, rows.Err()
}
