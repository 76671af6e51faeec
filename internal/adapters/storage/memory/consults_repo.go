package memory

import (
	"context"
	"sync"
	"time"

	"athlete-clinical-history/internal/domain/consults"
)

type ConsultsRepo struct {
	mu      sync.RWMutex
	byToken map[string]consults.ShareGrant
	byID    map[string]string // grant ID -> token
}

func NewConsultsRepo() *ConsultsRepo {
	return &ConsultsRepo{
		byToken: make(map[string]consults.ShareGrant),
		byID:    make(map[string]string),
	}
}

func (r *ConsultsRepo) Create(ctx context.Context, g consults.ShareGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byToken[g.Token] = g
	r.byID[g.ID] = g.Token
	return nil
}

func (r *ConsultsRepo) GetByToken(ctx context.Context, token string) (consults.ShareGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byToken[token]
	if !ok {
		return consults.ShareGrant{}, consults.ErrNotFound
	}
	return g, nil
}

func (r *ConsultsRepo) UpdateAccessedAt(ctx context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byID[id]
	if !ok {
		return consults.ErrNotFound
	}
	g := r.byToken[token]
	g.AccessedAt = &t
	r.byToken[token] = g
	return nil
}
