package memory

import (
	"context"
	"sort"
	"sync"

	"athlete-clinical-history/internal/domain/exams"
)

type ExamsRepo struct {
	mu     sync.RWMutex
	byID   map[int64]exams.Exam
	nextID int64

	// cases permite resolver el dueño vía caso sin duplicar datos.
	cases *CasesRepo
}

func NewExamsRepo(cases *CasesRepo) *ExamsRepo {
	return &ExamsRepo{
		byID:   make(map[int64]exams.Exam),
		nextID: 1,
		cases:  cases,
	}
}

func (r *ExamsRepo) Create(ctx context.Context, e exams.Exam) (exams.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.byID[e.ID] = e
	return e, nil
}

func (r *ExamsRepo) GetByID(ctx context.Context, id int64) (exams.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return exams.Exam{}, exams.ErrNotFound
	}
	return e, nil
}

func (r *ExamsRepo) ListByCase(ctx context.Context, caseID int64) ([]exams.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]exams.Exam, 0)
	for _, e := range r.byID {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ExamsRepo) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]exams.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]exams.Exam, 0, len(ids))
	for _, id := range ids {
		e, ok := r.byID[id]
		if !ok {
			continue
		}
		owner, ok := r.cases.athleteOf(e.CaseID)
		if ok && owner == athleteID {
			out = append(out, e)
		}
	}
	return out, nil
}
