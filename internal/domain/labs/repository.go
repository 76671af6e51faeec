package labs

import "context"

type Repository interface {
	Create(ctx context.Context, l Lab) (Lab, error)
	GetByID(ctx context.Context, id int64) (Lab, error)
	ListByCase(ctx context.Context, caseID int64) ([]Lab, error)

	// ListByIDsForAthlete filtra por ID y por ownership vía caso.
	ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]Lab, error)
}
