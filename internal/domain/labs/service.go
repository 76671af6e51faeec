package labs

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	TestName       string
	Result         string
	Unit           string
	ReferenceRange string
	CollectedAt    *time.Time
}

func (s *Service) Create(ctx context.Context, caseID int64, in CreateInput) (Lab, error) {
	if caseID <= 0 {
		return Lab{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.TestName) == "" {
		return Lab{}, ErrInvalidInput
	}

	l := Lab{
		CaseID:         caseID,
		TestName:       strings.TrimSpace(in.TestName),
		Result:         strings.TrimSpace(in.Result),
		Unit:           strings.TrimSpace(in.Unit),
		ReferenceRange: strings.TrimSpace(in.ReferenceRange),
		CollectedAt:    in.CollectedAt,
		CreatedAt:      s.now(),
	}

	return s.repo.Create(ctx, l)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Lab, error) {
	if id <= 0 {
		return Lab{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCase(ctx context.Context, caseID int64) ([]Lab, error) {
	if caseID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCase(ctx, caseID)
}

func (s *Service) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]Lab, error) {
	if athleteID <= 0 {
		return nil, ErrInvalidInput
	}
	if len(ids) == 0 {
		return []Lab{}, nil
	}
	return s.repo.ListByIDsForAthlete(ctx, ids, athleteID)
}
