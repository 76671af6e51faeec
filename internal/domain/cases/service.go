package cases

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
	AthleteID int64
	Title     string
	Diagnosis string
}

func (s *Service) Create(ctx context.Context, clinicianID int64, in CreateInput) (Case, error) {
	if clinicianID <= 0 || in.AthleteID <= 0 {
		return Case{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return Case{}, ErrInvalidInput
	}

	now := s.now()
	c := Case{
		AthleteID:   in.AthleteID,
		ClinicianID: clinicianID,
		Title:       strings.TrimSpace(in.Title),
		Diagnosis:   strings.TrimSpace(in.Diagnosis),
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.repo.Create(ctx, c)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Case, error) {
	if id <= 0 {
		return Case{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByAthlete(ctx context.Context, athleteID int64) ([]Case, error) {
	if athleteID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByAthlete(ctx, athleteID)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (Case, error) {
	if id <= 0 {
		return Case{}, ErrInvalidInput
	}
	switch status {
	case StatusOpen, StatusRecovering, StatusClosed:
	default:
		return Case{}, ErrInvalidInput
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return Case{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// ListByIDsForAthlete expone la consulta plana de ownership para consults.
func (s *Service) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]Case, error) {
	if athleteID <= 0 {
		return nil, ErrInvalidInput
	}
	if len(ids) == 0 {
		return []Case{}, nil
	}
	return s.repo.ListByIDsForAthlete(ctx, ids, athleteID)
}
