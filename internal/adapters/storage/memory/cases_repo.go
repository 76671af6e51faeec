package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"athlete-clinical-history/internal/domain/cases"
)

type CasesRepo struct {
	mu     sync.RWMutex
	byID   map[int64]cases.Case
	nextID int64
}

func NewCasesRepo() *CasesRepo {
	return &CasesRepo{
		byID:   make(map[int64]cases.Case),
		nextID: 1,
	}
}

func (r *CasesRepo) Create(ctx context.Context, c cases.Case) (cases.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++
	r.byID[c.ID] = c
	return c, nil
}

func (r *CasesRepo) GetByID(ctx context.Context, id int64) (cases.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cases.Case{}, cases.ErrNotFound
	}
	return c, nil
}

func (r *CasesRepo) ListByAthlete(ctx context.Context, athleteID int64) ([]cases.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cases.Case, 0)
	for _, c := range r.byID {
		if c.AthleteID == athleteID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CasesRepo) UpdateStatus(ctx context.Context, id int64, status cases.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return cases.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	r.byID[id] = c
	return nil
}

func (r *CasesRepo) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]cases.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cases.Case, 0, len(ids))
	for _, id := range ids {
		c, ok := r.byID[id]
		if ok && c.AthleteID == athleteID {
			out = append(out, c)
		}
	}
	return out, nil
}

// athleteOf resuelve el dueño de un caso. Lo usan los repos de exámenes
// y laboratorios para el filtro por ownership.
func (r *CasesRepo) athleteOf(caseID int64) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[caseID]
	if !ok {
		return 0, false
	}
	return c.AthleteID, true
}
