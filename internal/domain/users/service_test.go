package users

import (
	"context"
	"errors"
	"testing"
)

type testRepo struct {
	byID   map[int64]User
	nextID int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]User{}, nextID: 1}
}

func (r *testRepo) Create(ctx context.Context, u User) (User, error) {
	u.ID = r.nextID
	r.nextID++
	r.byID[u.ID] = u
	return u, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) ListByRole(ctx context.Context, role Role) ([]User, error) {
	out := make([]User, 0)
	for _, u := range r.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestService_Register_And_Authenticate(t *testing.T) {
	svc := NewService(newTestRepo())

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Ana@Club.COM ",
		Password: "secret1",
		FullName: "Ana Silva",
		Role:     RoleClinician,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", u.ID)
	}
	if u.Email != "ana@club.com" {
		t.Fatalf("email should be normalized, got %q", u.Email)
	}
	if u.PasswordHash == "secret1" || u.PasswordHash == "" {
		t.Fatalf("password must be hashed")
	}

	got, err := svc.Authenticate(context.Background(), "ana@club.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %d, got %d", u.ID, got.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "ana@club.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@club.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := []RegisterInput{
		{Email: "not-an-email", Password: "secret1", FullName: "X"},
		{Email: "a@b.com", Password: "short", FullName: "X"},
		{Email: "a@b.com", Password: "secret1", FullName: "   "},
		{Email: "a@b.com", Password: "secret1", FullName: "X", Role: Role("COACH")},
	}
	for i, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_Register_EmailTaken(t *testing.T) {
	svc := NewService(newTestRepo())

	in := RegisterInput{Email: "bruno@club.com", Password: "secret1", FullName: "Bruno Costa"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Register_DefaultRole(t *testing.T) {
	svc := NewService(newTestRepo())

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "carla@club.com",
		Password: "secret1",
		FullName: "Carla Mota",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != RoleAthlete {
		t.Fatalf("expected default role ATHLETE, got %s", u.Role)
	}
}
