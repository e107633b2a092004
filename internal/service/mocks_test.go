package service

import (
	"context"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockCreatorRepo
type MockCreatorRepo struct {
	mock.Mock
}

func (m *MockCreatorRepo) Create(ctx context.Context, creator *domain.Creator) error {
	args := m.Called(ctx, creator)
	return args.Error(0)
}
func (m *MockCreatorRepo) GetByID(ctx context.Context, id int32) (*domain.Creator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Creator), args.Error(1)
}
func (m *MockCreatorRepo) GetBySlug(ctx context.Context, slug string) (*domain.Creator, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Creator), args.Error(1)
}
func (m *MockCreatorRepo) Update(ctx context.Context, creator *domain.Creator) error {
	args := m.Called(ctx, creator)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRoomRepo
type MockRoomRepo struct {
	mock.Mock
}

func (m *MockRoomRepo) Create(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}
func (m *MockRoomRepo) GetByID(ctx context.Context, id int32) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}
func (m *MockRoomRepo) GetBySlug(ctx context.Context, creatorID int32, slug string) (*domain.Room, error) {
	args := m.Called(ctx, creatorID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}
func (m *MockRoomRepo) Update(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}
func (m *MockRoomRepo) ListByCreator(ctx context.Context, creatorID int32) ([]domain.Room, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]domain.Room), args.Error(1)
}

// MockJoinRequestRepo
type MockJoinRequestRepo struct {
	mock.Mock
}

func (m *MockJoinRequestRepo) Create(ctx context.Context, req *domain.JoinRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockJoinRequestRepo) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) GetPendingByRoomAndUser(ctx context.Context, roomID, userID int32) (*domain.JoinRequest, error) {
	args := m.Called(ctx, roomID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) CountApprovedActive(ctx context.Context, roomID int32, now time.Time) (int32, error) {
	args := m.Called(ctx, roomID, now)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockJoinRequestRepo) Decide(ctx context.Context, id string, status domain.JoinRequestStatus, patch repository.DecisionPatch) (bool, error) {
	args := m.Called(ctx, id, status, patch)
	return args.Bool(0), args.Error(1)
}
func (m *MockJoinRequestRepo) ListByCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error) {
	args := m.Called(ctx, creatorID, status)
	return args.Get(0).([]domain.JoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.JoinRequest, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.JoinRequest), args.Error(1)
}

// MockBanRepo
type MockBanRepo struct {
	mock.Mock
}

func (m *MockBanRepo) Create(ctx context.Context, ban *domain.Ban) error {
	args := m.Called(ctx, ban)
	return args.Error(0)
}
func (m *MockBanRepo) GetByID(ctx context.Context, id int32) (*domain.Ban, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ban), args.Error(1)
}
func (m *MockBanRepo) ListByCreator(ctx context.Context, creatorID int32) ([]domain.Ban, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]domain.Ban), args.Error(1)
}
func (m *MockBanRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRateLimitRepo
type MockRateLimitRepo struct {
	mock.Mock
}

func (m *MockRateLimitRepo) Consume(ctx context.Context, key string, max int32, window time.Duration, now time.Time) (*domain.RateLimitCounter, error) {
	args := m.Called(ctx, key, max, window, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitCounter), args.Error(1)
}
func (m *MockRateLimitRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendJoinRequestNotice(ctx context.Context, creatorEmail, creatorName, requesterName, roomSlug string) error {
	args := m.Called(ctx, creatorEmail, creatorName, requesterName, roomSlug)
	return args.Error(0)
}
func (m *MockEmailService) SendDecisionNotice(ctx context.Context, requesterEmail, requesterName, creatorName string, status domain.JoinRequestStatus, reason string) error {
	args := m.Called(ctx, requesterEmail, requesterName, creatorName, status, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPendingDigest(ctx context.Context, creatorEmail, creatorName string, pendingCount int, oldest time.Time) error {
	args := m.Called(ctx, creatorEmail, creatorName, pendingCount, oldest)
	return args.Error(0)
}

// MockVideoProvider
type MockVideoProvider struct {
	mock.Mock
}

func (m *MockVideoProvider) Mint(ctx context.Context, roomName, displayName string, ttl time.Duration) (*MintedToken, error) {
	args := m.Called(ctx, roomName, displayName, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MintedToken), args.Error(1)
}

// MockLifecycle
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Approve(ctx context.Context, actorCreatorID int32, requestID string) (*domain.JoinRequest, error) {
	args := m.Called(ctx, actorCreatorID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinRequest), args.Error(1)
}
func (m *MockLifecycle) AutoApprove(ctx context.Context, req *domain.JoinRequest) (*domain.JoinRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinRequest), args.Error(1)
}
func (m *MockLifecycle) Deny(ctx context.Context, actorCreatorID int32, requestID, reason string) (*domain.JoinRequest, error) {
	args := m.Called(ctx, actorCreatorID, requestID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinRequest), args.Error(1)
}
func (m *MockLifecycle) Poll(ctx context.Context, actorUserID int32, requestID string) (*StatusView, error) {
	args := m.Called(ctx, actorUserID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StatusView), args.Error(1)
}
func (m *MockLifecycle) ListForCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error) {
	args := m.Called(ctx, creatorID, status)
	return args.Get(0).([]domain.JoinRequest), args.Error(1)
}
