package users

import "time"

// UserRepo stores accounts keyed by ID and by normalised phone number.
// Lookups of unknown accounts return ErrUserNotFound.
type UserRepo interface {
	Upsert(user *User) error
	GetByPhoneNumber(phoneNumber string) (*User, error)
	GetByID(ID string) (*User, error)
	SetBlocked(phoneNumber string, blocked bool) error
	SetLastLogin(phoneNumber string, at time.Time) error
}
