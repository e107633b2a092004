package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type banRepository struct {
	db *sql.DB
}

func NewBanRepository(db *sql.DB) repository.BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) Create(ctx context.Context, ban *domain.Ban) error {
	query := `INSERT INTO bans (creator_id, user_id, email, ip_hash, device_hash, reason, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		ban.CreatorID, ban.UserID, nullIfEmpty(ban.Email), nullIfEmpty(ban.IPHash), nullIfEmpty(ban.DeviceHash),
		ban.Reason, time.Now(),
	).Scan(&ban.ID)
}

func (r *banRepository) GetByID(ctx context.Context, id int32) (*domain.Ban, error) {
	query := `SELECT id, creator_id, user_id, email, ip_hash, device_hash, reason, created_on FROM bans WHERE id = $1`
	ban := &domain.Ban{}
	var email, ipHash, deviceHash sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ban.ID, &ban.CreatorID, &ban.UserID, &email, &ipHash, &deviceHash, &ban.Reason, &ban.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ban.Email = email.String
	ban.IPHash = ipHash.String
	ban.DeviceHash = deviceHash.String
	return ban, nil
}

func (r *banRepository) ListByCreator(ctx context.Context, creatorID int32) ([]domain.Ban, error) {
	query := `SELECT id, creator_id, user_id, email, ip_hash, device_hash, reason, created_on
	          FROM bans WHERE creator_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []domain.Ban
	for rows.Next() {
		var ban domain.Ban
		var email, ipHash, deviceHash sql.NullString
		if err := rows.Scan(&ban.ID, &ban.CreatorID, &ban.UserID, &email, &ipHash, &deviceHash,
			&ban.Reason, &ban.CreatedOn); err != nil {
			return nil, err
		}
		ban.Email = email.String
		ban.IPHash = ipHash.String
		ban.DeviceHash = deviceHash.String
		bans = append(bans, ban)
	}
	return bans, rows.Err()
}

func (r *banRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
