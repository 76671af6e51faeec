package memory

import (
	"context"
	"sort"
	"sync"

	"athlete-clinical-history/internal/domain/labs"
)

type LabsRepo struct {
	mu     sync.RWMutex
	byID   map[int64]labs.Lab
	nextID int64

	cases *CasesRepo
}

func NewLabsRepo(cases *CasesRepo) *LabsRepo {
	return &LabsRepo{
		byID:   make(map[int64]labs.Lab),
		nextID: 1,
		cases:  cases,
	}
}

func (r *LabsRepo) Create(ctx context.Context, l labs.Lab) (labs.Lab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = r.nextID
	r.nextID++
	r.byID[l.ID] = l
	return l, nil
}

func (r *LabsRepo) GetByID(ctx context.Context, id int64) (labs.Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return labs.Lab{}, labs.ErrNotFound
	}
	return l, nil
}

func (r *LabsRepo) ListByCase(ctx context.Context, caseID int64) ([]labs.Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]labs.Lab, 0)
	for _, l := range r.byID {
		if l.CaseID == caseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LabsRepo) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]labs.Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]labs.Lab, 0, len(ids))
	for _, id := range ids {
		l, ok := r.byID[id]
		if !ok {
			continue
		}
		owner, ok := r.cases.athleteOf(l.CaseID)
		if ok && owner == athleteID {
			out = append(out, l)
		}
	}
	return out, nil
}
