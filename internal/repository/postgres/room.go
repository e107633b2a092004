package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

const roomColumns = `id, creator_id, slug, join_mode, access_code_hash, enabled, active, max_participants, created_on`

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `INSERT INTO rooms (creator_id, slug, join_mode, access_code_hash, enabled, active, max_participants, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		room.CreatorID, room.Slug, room.JoinMode, room.AccessCodeHash,
		room.Enabled, room.Active, room.MaxParticipants, time.Now(),
	).Scan(&room.ID)
}

func (r *roomRepository) GetByID(ctx context.Context, id int32) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *roomRepository) GetBySlug(ctx context.Context, creatorID int32, slug string) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE creator_id = $1 AND slug = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, creatorID, slug))
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	query := `UPDATE rooms SET join_mode = $1, access_code_hash = $2, enabled = $3, active = $4, max_participants = $5
	          WHERE id = $6`
	_, err := r.db.ExecContext(ctx, query,
		room.JoinMode, room.AccessCodeHash, room.Enabled, room.Active, room.MaxParticipants, room.ID)
	return err
}

func (r *roomRepository) ListByCreator(ctx context.Context, creatorID int32) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE creator_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.CreatorID, &room.Slug, &room.JoinMode, &room.AccessCodeHash,
			&room.Enabled, &room.Active, &room.MaxParticipants, &room.CreatedOn); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) scanOne(row *sql.Row) (*domain.Room, error) {
	room := &domain.Room{}
	err := row.Scan(&room.ID, &room.CreatorID, &room.Slug, &room.JoinMode, &room.AccessCodeHash,
		&room.Enabled, &room.Active, &room.MaxParticipants, &room.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}
