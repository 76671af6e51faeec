package exams

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
	Type        Type
	BodyPart    string
	PerformedAt *time.Time
	ReportNotes string
}

func (s *Service) Create(ctx context.Context, caseID int64, in CreateInput) (Exam, error) {
	if caseID <= 0 {
		return Exam{}, ErrInvalidInput
	}
	switch in.Type {
	case TypeXRay, TypeMRI, TypeCT, TypeUltrasound:
	default:
		return Exam{}, ErrInvalidInput
	}

	status := StatusOrdered
	if in.PerformedAt != nil {
		status = StatusCompleted
	}

	e := Exam{
		CaseID:      caseID,
		Type:        in.Type,
		BodyPart:    strings.TrimSpace(in.BodyPart),
		Status:      status,
		PerformedAt: in.PerformedAt,
		ReportNotes: strings.TrimSpace(in.ReportNotes),
		CreatedAt:   s.now(),
	}

	return s.repo.Create(ctx, e)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Exam, error) {
	if id <= 0 {
		return Exam{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCase(ctx context.Context, caseID int64) ([]Exam, error) {
	if caseID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCase(ctx, caseID)
}

func (s *Service) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]Exam, error) {
	if athleteID <= 0 {
		return nil, ErrInvalidInput
	}
	if len(ids) == 0 {
		return []Exam{}, nil
	}
	return s.repo.ListByIDsForAthlete(ctx, ids, athleteID)
}
