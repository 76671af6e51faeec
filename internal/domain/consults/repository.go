package consults

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, g ShareGrant) error
	GetByToken(ctx context.Context, token string) (ShareGrant, error)

	// UpdateAccessedAt sobreescribe el último acceso (no es un log).
	UpdateAccessedAt(ctx context.Context, id string, t time.Time) error
}
