package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type creatorRepository struct {
	db *sql.DB
}

func NewCreatorRepository(db *sql.DB) repository.CreatorRepository {
	return &creatorRepository{db: db}
}

func (r *creatorRepository) Create(ctx context.Context, c *domain.Creator) error {
	query := `INSERT INTO creators (user_id, slug, name, email, status, subscription_status, subscription_period_end, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.UserID, c.Slug, c.Name, c.Email, c.Status, c.SubscriptionStatus, c.SubscriptionPeriodEnd, time.Now(),
	).Scan(&c.ID)
}

func (r *creatorRepository) GetByID(ctx context.Context, id int32) (*domain.Creator, error) {
	query := `SELECT id, user_id, slug, name, email, status, subscription_status, subscription_period_end, created_on
	          FROM creators WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *creatorRepository) GetBySlug(ctx context.Context, slug string) (*domain.Creator, error) {
	query := `SELECT id, user_id, slug, name, email, status, subscription_status, subscription_period_end, created_on
	          FROM creators WHERE slug = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

func (r *creatorRepository) Update(ctx context.Context, c *domain.Creator) error {
	query := `UPDATE creators SET name = $1, email = $2, status = $3, subscription_status = $4, subscription_period_end = $5
	          WHERE id = $6`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.Email, c.Status, c.SubscriptionStatus, c.SubscriptionPeriodEnd, c.ID)
	return err
}

func (r *creatorRepository) scanOne(row *sql.Row) (*domain.Creator, error) {
	c := &domain.Creator{}
	err := row.Scan(&c.ID, &c.UserID, &c.Slug, &c.Name, &c.Email, &c.Status, &c.SubscriptionStatus, &c.SubscriptionPeriodEnd, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
