package postgres

import (
	"database/sql"

	"roomgate-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CreatorRepository
	repository.UserRepository
	repository.RoomRepository
	repository.JoinRequestRepository
	repository.BanRepository
	repository.RateLimitRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		CreatorRepository:      NewCreatorRepository(db),
		UserRepository:         NewUserRepository(db),
		RoomRepository:         NewRoomRepository(db),
		JoinRequestRepository:  NewJoinRequestRepository(db),
		BanRepository:          NewBanRepository(db),
		RateLimitRepository:    NewRateLimitRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
