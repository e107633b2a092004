// Package memory implements the repository interfaces on in-process maps.
// The server selects it at startup when no database is configured; tests
// use it as a fast backend with the same contract as the Postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type Store struct {
	mu sync.Mutex

	creators      map[int32]*domain.Creator
	users         map[int32]*domain.User
	rooms         map[int32]*domain.Room
	joinRequests  map[string]*domain.JoinRequest
	bans          map[int32]*domain.Ban
	counters      map[string]*domain.RateLimitCounter
	notifications map[int32]*domain.Notification

	nextCreatorID      int32
	nextUserID         int32
	nextRoomID         int32
	nextBanID          int32
	nextNotificationID int32
}

func NewStore() *Store {
	return &Store{
		creators:      make(map[int32]*domain.Creator),
		users:         make(map[int32]*domain.User),
		rooms:         make(map[int32]*domain.Room),
		joinRequests:  make(map[string]*domain.JoinRequest),
		bans:          make(map[int32]*domain.Ban),
		counters:      make(map[string]*domain.RateLimitCounter),
		notifications: make(map[int32]*domain.Notification),
	}
}

// --- CreatorRepository ---

type creatorStore struct{ s *Store }

// Creators returns the creator repository view of the store.
func (s *Store) Creators() repository.CreatorRepository { return creatorStore{s} }

func (c creatorStore) Create(ctx context.Context, creator *domain.Creator) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.nextCreatorID++
	creator.ID = c.s.nextCreatorID
	creator.CreatedOn = time.Now()
	cp := *creator
	c.s.creators[creator.ID] = &cp
	return nil
}

func (c creatorStore) GetByID(ctx context.Context, id int32) (*domain.Creator, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	creator, ok := c.s.creators[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *creator
	return &cp, nil
}

func (c creatorStore) GetBySlug(ctx context.Context, slug string) (*domain.Creator, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, creator := range c.s.creators {
		if creator.Slug == slug {
			cp := *creator
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c creatorStore) Update(ctx context.Context, creator *domain.Creator) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.creators[creator.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *creator
	c.s.creators[creator.ID] = &cp
	return nil
}

// --- UserRepository ---

type userStore struct{ s *Store }

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return userStore{s} }

func (u userStore) Create(ctx context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.nextUserID++
	user.ID = u.s.nextUserID
	user.Email = domain.NormalizeEmail(user.Email)
	user.CreatedOn = time.Now()
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}

func (u userStore) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	email = domain.NormalizeEmail(email)
	for _, usr := range u.s.users {
		if usr.Email == email {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u userStore) Update(ctx context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.Email = domain.NormalizeEmail(user.Email)
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}

// --- RoomRepository ---

type roomStore struct{ s *Store }

func (s *Store) Rooms() repository.RoomRepository { return roomStore{s} }

func (r roomStore) Create(ctx context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRoomID++
	room.ID = r.s.nextRoomID
	room.CreatedOn = time.Now()
	cp := *room
	r.s.rooms[room.ID] = &cp
	return nil
}

func (r roomStore) GetByID(ctx context.Context, id int32) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (r roomStore) GetBySlug(ctx context.Context, creatorID int32, slug string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, room := range r.s.rooms {
		if room.CreatorID == creatorID && room.Slug == slug {
			cp := *room
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r roomStore) Update(ctx context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[room.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *room
	r.s.rooms[room.ID] = &cp
	return nil
}

func (r roomStore) ListByCreator(ctx context.Context, creatorID int32) ([]domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rooms []domain.Room
	for _, room := range r.s.rooms {
		if room.CreatorID == creatorID {
			rooms = append(rooms, *room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

// --- JoinRequestRepository ---

type joinRequestStore struct{ s *Store }

func (s *Store) JoinRequests() repository.JoinRequestRepository { return joinRequestStore{s} }

func (j joinRequestStore) Create(ctx context.Context, req *domain.JoinRequest) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	// Mirror the Postgres partial unique index.
	for _, existing := range j.s.joinRequests {
		if existing.RoomID == req.RoomID &&
			existing.RequesterUserID == req.RequesterUserID &&
			existing.Status == domain.JoinRequestStatusPending {
			return repository.ErrDuplicatePending
		}
	}
	cp := *req
	j.s.joinRequests[req.ID] = &cp
	return nil
}

func (j joinRequestStore) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	req, ok := j.s.joinRequests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (j joinRequestStore) GetPendingByRoomAndUser(ctx context.Context, roomID, userID int32) (*domain.JoinRequest, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	for _, req := range j.s.joinRequests {
		if req.RoomID == roomID && req.RequesterUserID == userID && req.Status == domain.JoinRequestStatusPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (j joinRequestStore) CountApprovedActive(ctx context.Context, roomID int32, now time.Time) (int32, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	var count int32
	for _, req := range j.s.joinRequests {
		if req.RoomID == roomID && req.Status == domain.JoinRequestStatusApproved &&
			req.TokenExpiresOn != nil && req.TokenExpiresOn.After(now) {
			count++
		}
	}
	return count, nil
}

func (j joinRequestStore) Decide(ctx context.Context, id string, status domain.JoinRequestStatus, patch repository.DecisionPatch) (bool, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	req, ok := j.s.joinRequests[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status != domain.JoinRequestStatusPending {
		return false, nil
	}
	req.Status = status
	decidedOn := patch.DecidedOn
	req.DecidedOn = &decidedOn
	req.DecisionReason = patch.DecisionReason
	req.AccessToken = patch.AccessToken
	req.TokenExpiresOn = patch.TokenExpiresOn
	return true, nil
}

func (j joinRequestStore) ListByCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	var reqs []domain.JoinRequest
	for _, req := range j.s.joinRequests {
		if req.CreatorID != creatorID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, k int) bool { return reqs[i].CreatedOn.After(reqs[k].CreatedOn) })
	return reqs, nil
}

func (j joinRequestStore) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.JoinRequest, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	var reqs []domain.JoinRequest
	for _, req := range j.s.joinRequests {
		if req.Status == domain.JoinRequestStatusPending && req.CreatedOn.Before(cutoff) {
			reqs = append(reqs, *req)
		}
	}
	sort.Slice(reqs, func(i, k int) bool {
		if reqs[i].CreatorID != reqs[k].CreatorID {
			return reqs[i].CreatorID < reqs[k].CreatorID
		}
		return reqs[i].CreatedOn.Before(reqs[k].CreatedOn)
	})
	return reqs, nil
}

// --- BanRepository ---

type banStore struct{ s *Store }

func (s *Store) Bans() repository.BanRepository { return banStore{s} }

func (b banStore) Create(ctx context.Context, ban *domain.Ban) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.nextBanID++
	ban.ID = b.s.nextBanID
	ban.CreatedOn = time.Now()
	cp := *ban
	b.s.bans[ban.ID] = &cp
	return nil
}

func (b banStore) GetByID(ctx context.Context, id int32) (*domain.Ban, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	ban, ok := b.s.bans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ban
	return &cp, nil
}

func (b banStore) ListByCreator(ctx context.Context, creatorID int32) ([]domain.Ban, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var bans []domain.Ban
	for _, ban := range b.s.bans {
		if ban.CreatorID == creatorID {
			bans = append(bans, *ban)
		}
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].ID < bans[j].ID })
	return bans, nil
}

func (b banStore) Delete(ctx context.Context, id int32) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.bans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(b.s.bans, id)
	return nil
}

// --- RateLimitRepository ---

type rateLimitStore struct{ s *Store }

func (s *Store) RateLimits() repository.RateLimitRepository { return rateLimitStore{s} }

func (r rateLimitStore) Consume(ctx context.Context, key string, max int32, window time.Duration, now time.Time) (*domain.RateLimitCounter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counter, ok := r.s.counters[key]
	if !ok || !counter.WindowStart.After(now.Add(-window)) {
		counter = &domain.RateLimitCounter{Key: key, WindowStart: now, Count: 1}
		r.s.counters[key] = counter
	} else if counter.Count <= max {
		counter.Count++
	}
	cp := *counter
	return &cp, nil
}

func (r rateLimitStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var purged int64
	for key, counter := range r.s.counters {
		if counter.WindowStart.Before(cutoff) {
			delete(r.s.counters, key)
			purged++
		}
	}
	return purged, nil
}

// --- NotificationRepository ---

type notificationStore struct{ s *Store }

func (s *Store) Notifications() repository.NotificationRepository { return notificationStore{s} }

func (n notificationStore) Create(ctx context.Context, note *domain.Notification) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.s.nextNotificationID++
	note.ID = n.s.nextNotificationID
	note.CreatedOn = time.Now()
	cp := *note
	n.s.notifications[note.ID] = &cp
	return nil
}

func (n notificationStore) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var notes []domain.Notification
	for _, note := range n.s.notifications {
		if note.UserID == userID {
			notes = append(notes, *note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedOn.After(notes[j].CreatedOn) })
	total := int32(len(notes))
	if offset >= total {
		return nil, total, nil
	}
	notes = notes[offset:]
	if limit > 0 && int32(len(notes)) > limit {
		notes = notes[:limit]
	}
	return notes, total, nil
}

func (n notificationStore) MarkAsRead(ctx context.Context, id, userID int32) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	note, ok := n.s.notifications[id]
	if !ok || note.UserID != userID {
		return repository.ErrNotFound
	}
	note.IsRead = true
	return nil
}
