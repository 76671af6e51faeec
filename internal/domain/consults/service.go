package consults

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"athlete-clinical-history/internal/domain/cases"
	"athlete-clinical-history/internal/domain/exams"
	"athlete-clinical-history/internal/domain/labs"
	"athlete-clinical-history/internal/domain/users"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

// Colaboradores externos al módulo, como interfaces angostas para no
// acoplar consults a los services completos (y poder stubearlos en tests).

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (users.User, error)
}

type CaseSource interface {
	ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]cases.Case, error)
}

type ExamSource interface {
	ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]exams.Exam, error)
}

type LabSource interface {
	ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]labs.Lab, error)
}

type Service struct {
	grants Repository
	users  UserDirectory
	cases  CaseSource
	exams  ExamSource
	labs   LabSource

	now func() time.Time
}

func NewService(grants Repository, users UserDirectory, caseSrc CaseSource, examSrc ExamSource, labSrc LabSource) *Service {
	return &Service{
		grants: grants,
		users:  users,
		cases:  caseSrc,
		exams:  examSrc,
		labs:   labSrc,
		now:    time.Now,
	}
}

type CreateShareInput struct {
	AthleteID   int64
	Permissions Permissions

	// nil = no enviado => default 48h. Tope 168h (7 días).
	ExpiryHours *float64
}

// CreateShareLink emite un ShareGrant para un clínico.
//
// Toda la validación (input, rol del atleta, ownership de cada ID)
// ocurre antes de cualquier escritura: si algo falla, no se persiste
// ningún grant.
func (s *Service) CreateShareLink(ctx context.Context, clinicianID int64, in CreateShareInput) (ShareGrant, error) {
	if clinicianID <= 0 {
		return ShareGrant{}, fmt.Errorf("%w: invalid clinician id", ErrInvalidInput)
	}
	if err := validateAthleteID(in.AthleteID); err != nil {
		return ShareGrant{}, err
	}
	if err := validatePermissions(in.Permissions); err != nil {
		return ShareGrant{}, err
	}
	in.Permissions = normalizePermissions(in.Permissions)
	hours, err := validateExpiryHours(in.ExpiryHours)
	if err != nil {
		return ShareGrant{}, err
	}

	athlete, err := s.users.GetByID(ctx, in.AthleteID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ShareGrant{}, fmt.Errorf("%w: athlete not found", ErrNotFound)
		}
		return ShareGrant{}, err
	}
	if athlete.Role != users.RoleAthlete {
		return ShareGrant{}, fmt.Errorf("%w: the specified user is not an athlete", ErrInvalidInput)
	}

	if err := s.verifyOwnership(ctx, in.AthleteID, in.Permissions); err != nil {
		return ShareGrant{}, err
	}

	token, err := newShareToken()
	if err != nil {
		return ShareGrant{}, err
	}
	code, err := newAccessCode()
	if err != nil {
		return ShareGrant{}, err
	}

	now := s.now()
	g := ShareGrant{
		ID:          uuid.NewString(),
		ClinicianID: clinicianID,
		AthleteID:   in.AthleteID,
		Token:       token,
		AccessCode:  code,
		Permissions: in.Permissions,
		ExpiresAt:   now.Add(time.Duration(hours * float64(time.Hour))),
		CreatedAt:   now,
	}

	if err := s.grants.Create(ctx, g); err != nil {
		return ShareGrant{}, err
	}
	return g, nil
}

// verifyOwnership re-consulta cada categoría filtrando por
// {id ∈ supplied, atleta} y exige que la cantidad devuelta coincida
// con la enviada. Un mismatch significa que al menos un ID no existe
// o pertenece a otro atleta: se rechaza sin decir cuál, para que un
// clínico no pueda sondear registros ajenos adivinando IDs.
func (s *Service) verifyOwnership(ctx context.Context, athleteID int64, p Permissions) error {
	if len(p.CaseIDs) > 0 {
		found, err := s.cases.ListByIDsForAthlete(ctx, p.CaseIDs, athleteID)
		if err != nil {
			return err
		}
		if len(found) != len(p.CaseIDs) {
			return fmt.Errorf("%w: some case ids are invalid or don't belong to this athlete", ErrForbidden)
		}
	}

	if len(p.ExamIDs) > 0 {
		found, err := s.exams.ListByIDsForAthlete(ctx, p.ExamIDs, athleteID)
		if err != nil {
			return err
		}
		if len(found) != len(p.ExamIDs) {
			return fmt.Errorf("%w: some exam ids are invalid or don't belong to this athlete", ErrForbidden)
		}
	}

	if len(p.LabIDs) > 0 {
		found, err := s.labs.ListByIDsForAthlete(ctx, p.LabIDs, athleteID)
		if err != nil {
			return err
		}
		if len(found) != len(p.LabIDs) {
			return fmt.Errorf("%w: some lab test ids are invalid or don't belong to this athlete", ErrForbidden)
		}
	}

	return nil
}

type ShareMeta struct {
	SharedBy    string
	PatientName string
	ExpiresAt   time.Time
	Notes       string
}

type SharedRecords struct {
	Cases []cases.Case
	Exams []exams.Exam
	Labs  []labs.Lab
}

type SharedView struct {
	Meta ShareMeta
	Data SharedRecords
}

// Resolve valida el par token+código y devuelve exactamente los
// registros permitidos por el grant.
//
// Orden de chequeos: formato de token, existencia, código, expiración.
// Un grant se puede resolver muchas veces hasta expirar (no es
// one-time-use); la única mutación es el timestamp de último acceso.
func (s *Service) Resolve(ctx context.Context, token, accessCode string) (SharedView, error) {
	if err := validateToken(token); err != nil {
		return SharedView{}, err
	}

	g, err := s.grants.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SharedView{}, fmt.Errorf("%w: invalid consultation link", ErrNotFound)
		}
		return SharedView{}, err
	}

	// Comparación constante: el código es un secreto de 6 dígitos y no
	// queremos regalar información por timing.
	if subtle.ConstantTimeCompare([]byte(g.AccessCode), []byte(accessCode)) != 1 {
		return SharedView{}, fmt.Errorf("%w: invalid access code", ErrForbidden)
	}

	now := s.now()
	if !now.Before(g.ExpiresAt) {
		return SharedView{}, fmt.Errorf("%w: this consultation link has expired", ErrForbidden)
	}

	// Best-effort: si falla el update del audit timestamp no se corta
	// la resolución (es dato advisory, no frontera de seguridad).
	_ = s.grants.UpdateAccessedAt(ctx, g.ID, now)

	clinician, err := s.users.GetByID(ctx, g.ClinicianID)
	if err != nil {
		return SharedView{}, err
	}
	athlete, err := s.users.GetByID(ctx, g.AthleteID)
	if err != nil {
		return SharedView{}, err
	}

	data := SharedRecords{
		Cases: []cases.Case{},
		Exams: []exams.Exam{},
		Labs:  []labs.Lab{},
	}

	// Fetch scoped: solo lo que está en el allow-list. No hace falta
	// re-chequear ownership acá; la emisión ya lo verificó.
	if len(g.Permissions.CaseIDs) > 0 {
		data.Cases, err = s.cases.ListByIDsForAthlete(ctx, g.Permissions.CaseIDs, g.AthleteID)
		if err != nil {
			return SharedView{}, err
		}
	}
	if len(g.Permissions.ExamIDs) > 0 {
		data.Exams, err = s.exams.ListByIDsForAthlete(ctx, g.Permissions.ExamIDs, g.AthleteID)
		if err != nil {
			return SharedView{}, err
		}
	}
	if len(g.Permissions.LabIDs) > 0 {
		data.Labs, err = s.labs.ListByIDsForAthlete(ctx, g.Permissions.LabIDs, g.AthleteID)
		if err != nil {
			return SharedView{}, err
		}
	}

	return SharedView{
		Meta: ShareMeta{
			SharedBy:    clinician.FullName,
			PatientName: athlete.FullName,
			ExpiresAt:   g.ExpiresAt,
			Notes:       g.Permissions.Notes,
		},
		Data: data,
	}, nil
}
