package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"

	"github.com/lib/pq"
)

type joinRequestRepository struct {
	db *sql.DB
}

func NewJoinRequestRepository(db *sql.DB) repository.JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

const joinRequestColumns = `id, creator_id, room_id, requester_user_id, requester_email, status,
	access_mode_at_creation, created_on, decided_on, decision_reason, access_token, token_expires_on`

func (r *joinRequestRepository) Create(ctx context.Context, req *domain.JoinRequest) error {
	query := `INSERT INTO join_requests
	          (id, creator_id, room_id, requester_user_id, requester_email, status, access_mode_at_creation, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.CreatorID, req.RoomID, req.RequesterUserID, req.RequesterEmail,
		req.Status, req.AccessModeAtCreation, req.CreatedOn)
	// The partial unique index join_requests_one_pending is the
	// authoritative duplicate-pending guard; the engine's pre-check only
	// narrows the race window.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return repository.ErrDuplicatePending
	}
	return err
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *joinRequestRepository) GetPendingByRoomAndUser(ctx context.Context, roomID, userID int32) (*domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests
	          WHERE room_id = $1 AND requester_user_id = $2 AND status = $3`
	return r.scanOne(r.db.QueryRowContext(ctx, query, roomID, userID, domain.JoinRequestStatusPending))
}

func (r *joinRequestRepository) CountApprovedActive(ctx context.Context, roomID int32, now time.Time) (int32, error) {
	query := `SELECT COUNT(*) FROM join_requests
	          WHERE room_id = $1 AND status = $2 AND token_expires_on > $3`
	var count int32
	err := r.db.QueryRowContext(ctx, query, roomID, domain.JoinRequestStatusApproved, now).Scan(&count)
	return count, err
}

func (r *joinRequestRepository) Decide(ctx context.Context, id string, status domain.JoinRequestStatus, patch repository.DecisionPatch) (bool, error) {
	// Conditional update: the WHERE status='PENDING' guard makes the
	// transition a compare-and-swap, so concurrent deciders cannot both
	// succeed.
	query := `UPDATE join_requests
	          SET status = $1, decided_on = $2, decision_reason = $3, access_token = $4, token_expires_on = $5
	          WHERE id = $6 AND status = $7`
	res, err := r.db.ExecContext(ctx, query,
		status, patch.DecidedOn, patch.DecisionReason, patch.AccessToken, patch.TokenExpiresOn,
		id, domain.JoinRequestStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}
	// Zero rows means either the request was already decided or it never
	// existed; only the former is a lost race.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM join_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (r *joinRequestRepository) ListByCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE creator_id = $1`
	args := []any{creatorID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *joinRequestRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests
	          WHERE status = $1 AND created_on < $2 ORDER BY creator_id, created_on`
	rows, err := r.db.QueryContext(ctx, query, domain.JoinRequestStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *joinRequestRepository) scanOne(row *sql.Row) (*domain.JoinRequest, error) {
	req := &domain.JoinRequest{}
	var reason, token sql.NullString
	err := row.Scan(&req.ID, &req.CreatorID, &req.RoomID, &req.RequesterUserID, &req.RequesterEmail,
		&req.Status, &req.AccessModeAtCreation, &req.CreatedOn, &req.DecidedOn, &reason, &token, &req.TokenExpiresOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	req.DecisionReason = reason.String
	req.AccessToken = token.String
	return req, nil
}

func (r *joinRequestRepository) scanAll(rows *sql.Rows) ([]domain.JoinRequest, error) {
	var reqs []domain.JoinRequest
	for rows.Next() {
		var req domain.JoinRequest
		var reason, token sql.NullString
		if err := rows.Scan(&req.ID, &req.CreatorID, &req.RoomID, &req.RequesterUserID, &req.RequesterEmail,
			&req.Status, &req.AccessModeAtCreation, &req.CreatedOn, &req.DecidedOn, &reason, &token, &req.TokenExpiresOn); err != nil {
			return nil, err
		}
		req.DecisionReason = reason.String
		req.AccessToken = token.String
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
