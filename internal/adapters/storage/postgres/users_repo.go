package postgres

import (
	"context"
	"database/sql"
	"errors"

	"athlete-clinical-history/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (
			email, password_hash, full_name, role,
			date_of_birth, gender, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		u.Email,
		u.PasswordHash,
		u.FullName,
		u.Role,
		toNullTime(u.DateOfBirth),
		u.Gender,
		u.CreatedAt,
	)
	if err := row.Scan(&u.ID); err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, email, password_hash, full_name, role,
			date_of_birth, gender, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, email, password_hash, full_name, role,
			date_of_birth, gender, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, email, password_hash, full_name, role,
			date_of_birth, gender, created_at
		FROM users
		WHERE role = $1
		ORDER BY id ASC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		var dob sql.NullTime
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.FullName,
			&u.Role,
			&dob,
			&u.Gender,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		u.DateOfBirth = fromNullTime(dob)
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row *sql.Row) (users.User, error) {
	var u users.User
	var dob sql.NullTime
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&dob,
		&u.Gender,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	u.DateOfBirth = fromNullTime(dob)
	return u, nil
}
