package exams

import "context"

type Repository interface {
	Create(ctx context.Context, e Exam) (Exam, error)
	GetByID(ctx context.Context, id int64) (Exam, error)
	ListByCase(ctx context.Context, caseID int64) ([]Exam, error)

	// ListByIDsForAthlete filtra por ID y por ownership vía caso.
	ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]Exam, error)
}
