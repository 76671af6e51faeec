package cases

import "context"

type Repository interface {
	Create(ctx context.Context, c Case) (Case, error)
	GetByID(ctx context.Context, id int64) (Case, error)
	ListByAthlete(ctx context.Context, athleteID int64) ([]Case, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// ListByIDsForAthlete devuelve solo los casos cuyo ID está en ids
	// Y pertenecen al atleta. Es la consulta plana que usa el módulo de
	// consultas compartidas para validar ownership y para el fetch scoped.
	ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]Case, error)
}
