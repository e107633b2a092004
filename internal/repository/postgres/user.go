package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, display_name, age_attested, terms_accepted_on, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		domain.NormalizeEmail(u.Email), u.DisplayName, u.AgeAttested, u.TermsAcceptedOn, time.Now(),
	).Scan(&u.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT id, email, display_name, age_attested, terms_accepted_on, created_on FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, display_name, age_attested, terms_accepted_on, created_on FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email = $1, display_name = $2, age_attested = $3, terms_accepted_on = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query,
		domain.NormalizeEmail(u.Email), u.DisplayName, u.AgeAttested, u.TermsAcceptedOn, u.ID)
	return err
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.AgeAttested, &u.TermsAcceptedOn, &u.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
