package refresh

import (
	"time"
)

// StoredRefreshToken represents the server-side storage of refresh token metadata.
// The client only receives the Token field (a random string).
type StoredRefreshToken struct {
	Token     string    // The actual random token string (sent to client)
	UserID    string    // Account the token was issued to
	Iat       time.Time // Issued at time
	ExpiresAt time.Time // Rejected from this time on
}

// Repo manages server-side storage of refresh token metadata, keyed by the
// token string. Unknown tokens and users yield ErrNotFound.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID string) (*StoredRefreshToken, error)
}
