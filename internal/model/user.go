// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the local account behind an identity-provider subject.
//
// The provider's subject string is never stored. AuthIDHash is the keyed hash
// of it (see internal/identity), and the UNIQUE constraint on auth_id_hash
// guarantees one provider account maps to exactly one row.
//
// CreatedAt equals UpdatedAt only until the second resolution, which is how
// the request layer recognises a first login.
type User struct {
	ID          string    `json:"id"`
	AuthIDHash  string    `json:"-"`
	LastLoginAt time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsFirstLogin reports whether the record has never been touched after insert.
func (u *User) IsFirstLogin() bool {
	return u != nil && u.CreatedAt.Equal(u.UpdatedAt)
}
