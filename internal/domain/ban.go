package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Ban is a standing denial rule scoped to one creator. At least one
// identity facet must be set. Unlike join requests, bans are pure denial
// rules, so unban is a hard delete.
type Ban struct {
	ID         int32     `json:"id"`
	CreatorID  int32     `json:"creator_id"`
	UserID     *int32    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	IPHash     string    `json:"ip_hash,omitempty"`
	DeviceHash string    `json:"device_hash,omitempty"`
	Reason     string    `json:"reason"`
	CreatedOn  time.Time `json:"created_on"`
}

// HasFacet reports whether at least one identity facet is populated.
func (b *Ban) HasFacet() bool {
	return b.UserID != nil || b.Email != "" || b.IPHash != "" || b.DeviceHash != ""
}

// RequesterIdentity is the set of identity facets a ban can match against.
// Facets must be normalized (NormalizeEmail, HashIdentity) before storage
// and before lookup so that comparisons never miss on formatting.
type RequesterIdentity struct {
	UserID     int32
	Email      string
	IPHash     string
	DeviceHash string
}

// NormalizeEmail canonicalizes an email for facet comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashIdentity maps a raw identity value (client IP, device id) to the
// lower-hex digest form used for ban facets.
func HashIdentity(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
