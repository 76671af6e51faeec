package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"athlete-clinical-history/internal/domain/consults"
)

type ConsultsRepo struct {
	db *sql.DB
}

func NewConsultsRepo(db *sql.DB) *ConsultsRepo {
	return &ConsultsRepo{db: db}
}

func (r *ConsultsRepo) Create(ctx context.Context, g consults.ShareGrant) error {
	perms, err := json.Marshal(g.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO share_grants (
			id, clinician_id, athlete_id,
			token, access_code, permissions,
			expires_at, accessed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		g.ID,
		g.ClinicianID,
		g.AthleteID,
		g.Token,
		g.AccessCode,
		perms,
		g.ExpiresAt,
		toNullTime(g.AccessedAt),
		g.CreatedAt,
	)
	return err
}

func (r *ConsultsRepo) GetByToken(ctx context.Context, token string) (consults.ShareGrant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, clinician_id, athlete_id,
			token, access_code, permissions,
			expires_at, accessed_at, created_at
		FROM share_grants
		WHERE token = $1
	`, token)

	var g consults.ShareGrant
	var perms []byte
	var acc sql.NullTime
	if err := row.Scan(
		&g.ID,
		&g.ClinicianID,
		&g.AthleteID,
		&g.Token,
		&g.AccessCode,
		&perms,
		&g.ExpiresAt,
		&acc,
		&g.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return consults.ShareGrant{}, consults.ErrNotFound
		}
		return consults.ShareGrant{}, err
	}
	if err := json.Unmarshal(perms, &g.Permissions); err != nil {
		return consults.ShareGrant{}, err
	}
	g.AccessedAt = fromNullTime(acc)
	return g, nil
}

func (r *ConsultsRepo) UpdateAccessedAt(ctx context.Context, id string, t time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE share_grants
		SET accessed_at = $2
		WHERE id = $1
	`, id, t)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return consults.ErrNotFound
	}
	return nil
}
