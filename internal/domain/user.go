package domain

import "time"

type User struct {
	ID          int32  `json:"id"`
	Email       string `json:"email"` // stored lower-cased
	DisplayName string `json:"display_name"`
	// Mandatory attestations. Both must hold before the user may request
	// to join any room.
	AgeAttested     bool       `json:"age_attested"`
	TermsAcceptedOn *time.Time `json:"terms_accepted_on,omitempty"`
	CreatedOn       time.Time  `json:"created_on"`
}

// Compliant reports whether the user has completed the mandatory
// attestations (age and terms).
func (u *User) Compliant() bool {
	return u.AgeAttested && u.TermsAcceptedOn != nil
}
