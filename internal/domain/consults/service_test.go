package consults

import (
	"context"
	"errors"
	"testing"
	"time"

	"athlete-clinical-history/internal/domain/cases"
	"athlete-clinical-history/internal/domain/exams"
	"athlete-clinical-history/internal/domain/labs"
	"athlete-clinical-history/internal/domain/users"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byToken map[string]ShareGrant
	byID    map[string]string
}

func newTestRepo() *testRepo {
	return &testRepo{
		byToken: map[string]ShareGrant{},
		byID:    map[string]string{},
	}
}

func (r *testRepo) Create(ctx context.Context, g ShareGrant) error {
	if g.ID == "" || g.Token == "" {
		return errors.New("repo: id and token required")
	}
	if _, ok := r.byToken[g.Token]; ok {
		return errors.New("repo: token already exists")
	}
	r.byToken[g.Token] = g
	r.byID[g.ID] = g.Token
	return nil
}

func (r *testRepo) GetByToken(ctx context.Context, token string) (ShareGrant, error) {
	g, ok := r.byToken[token]
	if !ok {
		return ShareGrant{}, ErrNotFound
	}
	return g, nil
}

func (r *testRepo) UpdateAccessedAt(ctx context.Context, id string, t time.Time) error {
	token, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	g := r.byToken[token]
	g.AccessedAt = &t
	r.byToken[token] = g
	return nil
}

// -------------------------
// Stub collaborators
// -------------------------

type stubUsers struct {
	byID map[int64]users.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (users.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

type stubCases struct {
	byID map[int64]cases.Case
}

func (s *stubCases) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]cases.Case, error) {
	out := make([]cases.Case, 0, len(ids))
	for _, id := range ids {
		c, ok := s.byID[id]
		if ok && c.AthleteID == athleteID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubExams struct {
	byID     map[int64]exams.Exam
	caseOwns map[int64]int64 // caseID -> athleteID
}

func (s *stubExams) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]exams.Exam, error) {
	out := make([]exams.Exam, 0, len(ids))
	for _, id := range ids {
		e, ok := s.byID[id]
		if ok && s.caseOwns[e.CaseID] == athleteID {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubLabs struct {
	byID     map[int64]labs.Lab
	caseOwns map[int64]int64
}

func (s *stubLabs) ListByIDsForAthlete(ctx context.Context, ids []int64, athleteID int64) ([]labs.Lab, error) {
	out := make([]labs.Lab, 0, len(ids))
	for _, id := range ids {
		l, ok := s.byID[id]
		if ok && s.caseOwns[l.CaseID] == athleteID {
			out = append(out, l)
		}
	}
	return out, nil
}

// -------------------------
// Fixture
// -------------------------

const (
	clinicianID = int64(10)
	athleteID   = int64(20)
	otherID     = int64(30)
)

// newFixture arma un service con dos atletas y datos cruzados:
// los casos 1 y 2 (con examen 1 y lab 1) son del atleta 20,
// el caso 999 es del atleta 30.
func newFixture(t *testing.T) (*Service, *testRepo) {
	t.Helper()

	repo := newTestRepo()

	usersDir := &stubUsers{byID: map[int64]users.User{
		clinicianID: {ID: clinicianID, FullName: "Dr. Ana Silva", Role: users.RoleClinician},
		athleteID:   {ID: athleteID, FullName: "Bruno Costa", Role: users.RoleAthlete},
		otherID:     {ID: otherID, FullName: "Carla Mota", Role: users.RoleAthlete},
	}}

	caseSrc := &stubCases{byID: map[int64]cases.Case{
		1:   {ID: 1, AthleteID: athleteID, Title: "ACL sprain"},
		2:   {ID: 2, AthleteID: athleteID, Title: "Ankle overload"},
		999: {ID: 999, AthleteID: otherID, Title: "Other athlete case"},
	}}

	owns := map[int64]int64{1: athleteID, 2: athleteID, 999: otherID}

	examSrc := &stubExams{
		byID:     map[int64]exams.Exam{1: {ID: 1, CaseID: 1, Type: exams.TypeMRI, BodyPart: "knee"}},
		caseOwns: owns,
	}
	labSrc := &stubLabs{
		byID:     map[int64]labs.Lab{1: {ID: 1, CaseID: 2, TestName: "CK", Result: "310"}},
		caseOwns: owns,
	}

	return NewService(repo, usersDir, caseSrc, examSrc, labSrc), repo
}

func floatPtr(f float64) *float64 { return &f }

// -------------------------
// CreateShareLink
// -------------------------

func TestService_CreateShareLink_Defaults(t *testing.T) {
	svc, repo := newFixture(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1, 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.Token) != tokenBytes*2 {
		t.Fatalf("expected %d-char hex token, got %d chars", tokenBytes*2, len(g.Token))
	}
	if len(g.AccessCode) != 6 {
		t.Fatalf("expected 6-digit access code, got %q", g.AccessCode)
	}
	if g.AccessCode[0] == '0' {
		t.Fatalf("access code must not start with zero: %q", g.AccessCode)
	}

	wantExpiry := now.Add(48 * time.Hour)
	if !g.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected default expiry %v, got %v", wantExpiry, g.ExpiresAt)
	}
	if g.AccessedAt != nil {
		t.Fatalf("new grant must not have accessedAt set")
	}
	if len(repo.byToken) != 1 {
		t.Fatalf("expected 1 persisted grant, got %d", len(repo.byToken))
	}
}

func TestService_CreateShareLink_DedupsIDs(t *testing.T) {
	svc, _ := newFixture(t)

	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1, 1, 2}},
	})
	if err != nil {
		t.Fatalf("duplicated ids should not break ownership check: %v", err)
	}
	if len(g.Permissions.CaseIDs) != 2 {
		t.Fatalf("expected deduped [1 2], got %v", g.Permissions.CaseIDs)
	}
}

func TestService_CreateShareLink_EmptyPermissions(t *testing.T) {
	svc, repo := newFixture(t)

	_, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{Notes: "solo notas"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.byToken) != 0 {
		t.Fatalf("nothing should be persisted on validation failure")
	}
}

func TestService_CreateShareLink_NonPositiveIDs(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1, 0}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero id, got %v", err)
	}

	_, err = svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{ExamIDs: []int64{-3}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative id, got %v", err)
	}
}

func TestService_CreateShareLink_ExpiryBounds(t *testing.T) {
	svc, _ := newFixture(t)

	for _, hours := range []float64{0, -1, 169, 200} {
		_, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
			AthleteID:   athleteID,
			Permissions: Permissions{CaseIDs: []int64{1}},
			ExpiryHours: floatPtr(hours),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expiryHours=%v: expected ErrInvalidInput, got %v", hours, err)
		}
	}

	// 168 es el tope inclusivo.
	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1}},
		ExpiryHours: floatPtr(168),
	})
	if err != nil {
		t.Fatalf("expiryHours=168 should be accepted: %v", err)
	}
	if got := g.ExpiresAt.Sub(g.CreatedAt); got != 168*time.Hour {
		t.Fatalf("expected 168h window, got %v", got)
	}
}

func TestService_CreateShareLink_AthleteChecks(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   12345,
		Permissions: Permissions{CaseIDs: []int64{1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown athlete, got %v", err)
	}

	// El clínico existe pero no es atleta.
	_, err = svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   clinicianID,
		Permissions: Permissions{CaseIDs: []int64{1}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-athlete target, got %v", err)
	}
}

func TestService_CreateShareLink_ForeignCaseRejected(t *testing.T) {
	svc, repo := newFixture(t)

	// El caso 999 existe pero es de otro atleta: mismatch de conteo.
	_, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1, 999}},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(repo.byToken) != 0 {
		t.Fatalf("nothing should be persisted when ownership fails")
	}
}

// -------------------------
// Resolve
// -------------------------

func TestService_Resolve_RoundTrip(t *testing.T) {
	svc, _ := newFixture(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID: athleteID,
		Permissions: Permissions{
			CaseIDs: []int64{1, 2},
			ExamIDs: []int64{1},
			Notes:   "post-op control",
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.Resolve(context.Background(), g.Token, g.AccessCode)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if view.Meta.SharedBy != "Dr. Ana Silva" {
		t.Fatalf("unexpected sharedBy: %q", view.Meta.SharedBy)
	}
	if view.Meta.PatientName != "Bruno Costa" {
		t.Fatalf("unexpected patientName: %q", view.Meta.PatientName)
	}
	if view.Meta.Notes != "post-op control" {
		t.Fatalf("unexpected notes: %q", view.Meta.Notes)
	}

	if len(view.Data.Cases) != 2 {
		t.Fatalf("expected exactly cases 1 and 2, got %d", len(view.Data.Cases))
	}
	if len(view.Data.Exams) != 1 {
		t.Fatalf("expected exactly exam 1, got %d", len(view.Data.Exams))
	}
	// Labs no estaba en el grant: slice vacío, no nil.
	if view.Data.Labs == nil || len(view.Data.Labs) != 0 {
		t.Fatalf("labs must be an empty slice, got %#v", view.Data.Labs)
	}
}

func TestService_Resolve_ErrorTaxonomy(t *testing.T) {
	svc, _ := newFixture(t)

	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Token sintácticamente imposible: corta antes del lookup.
	if _, err := svc.Resolve(context.Background(), "short", g.AccessCode); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short token, got %v", err)
	}

	// Token bien formado pero inexistente.
	if _, err := svc.Resolve(context.Background(), "deadbeefdeadbeefdeadbeef", g.AccessCode); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}

	// Código equivocado.
	wrong := "000000"
	if wrong == g.AccessCode {
		wrong = "000001"
	}
	if _, err := svc.Resolve(context.Background(), g.Token, wrong); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong code, got %v", err)
	}
}

func TestService_Resolve_Expiry(t *testing.T) {
	svc, _ := newFixture(t)

	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{CaseIDs: []int64{1}},
		ExpiryHours: floatPtr(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Justo antes del borde sigue vivo.
	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := svc.Resolve(context.Background(), g.Token, g.AccessCode); err != nil {
		t.Fatalf("resolve at 59m should succeed: %v", err)
	}

	// En el instante exacto de expiración ya no (expiresAt <= now).
	svc.now = func() time.Time { return issued.Add(time.Hour) }
	if _, err := svc.Resolve(context.Background(), g.Token, g.AccessCode); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden at expiry instant, got %v", err)
	}

	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, err := svc.Resolve(context.Background(), g.Token, g.AccessCode); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after expiry, got %v", err)
	}
}

func TestService_Resolve_ReusableAndAccessedAtOverwritten(t *testing.T) {
	svc, repo := newFixture(t)

	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	g, err := svc.CreateShareLink(context.Background(), clinicianID, CreateShareInput{
		AthleteID:   athleteID,
		Permissions: Permissions{LabIDs: []int64{1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first := issued.Add(10 * time.Minute)
	svc.now = func() time.Time { return first }
	if _, err := svc.Resolve(context.Background(), g.Token, g.AccessCode); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	stored := repo.byToken[g.Token]
	if stored.AccessedAt == nil || !stored.AccessedAt.Equal(first) {
		t.Fatalf("expected accessedAt=%v, got %v", first, stored.AccessedAt)
	}

	// No es one-time-use: una segunda resolución funciona y
	// sobreescribe el timestamp.
	second := issued.Add(30 * time.Minute)
	svc.now = func() time.Time { return second }
	if _, err := svc.Resolve(context.Background(), g.Token, g.AccessCode); err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	stored = repo.byToken[g.Token]
	if stored.AccessedAt == nil || !stored.AccessedAt.Equal(second) {
		t.Fatalf("expected accessedAt overwritten to %v, got %v", second, stored.AccessedAt)
	}
}
