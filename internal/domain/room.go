package domain

import "time"

type JoinMode string

const (
	JoinModeOpen  JoinMode = "OPEN"  // join requests are auto-approved
	JoinModeKnock JoinMode = "KNOCK" // creator decides every request
	JoinModeKeyed JoinMode = "KEYED" // requester must present the access code
)

// DefaultRoomSlug is the room used when a join request names no room.
const DefaultRoomSlug = "main"

type Room struct {
	ID        int32    `json:"id"`
	CreatorID int32    `json:"creator_id"`
	Slug      string   `json:"slug"`
	JoinMode  JoinMode `json:"join_mode"`
	// AccessCodeHash is a bcrypt hash, meaningful only when JoinMode is
	// KEYED. Never serialized.
	AccessCodeHash  string    `json:"-"`
	Enabled         bool      `json:"enabled"`
	Active          bool      `json:"active"`
	MaxParticipants int32     `json:"max_participants"`
	CreatedOn       time.Time `json:"created_on"`
}

// Joinable reports whether the room accepts new join requests at all.
// Rooms are disabled rather than hard-deleted.
func (r *Room) Joinable() bool {
	return r.Enabled && r.Active
}
