package jwt

import (
	"time"

	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/elousi1010/quanlyveso-sub000/users"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Creator issues access tokens for dashboard accounts
type Creator struct {
	signer Signer
	expiry time.Duration
}

// NewCreator creates a new JWT creator whose tokens live for expiry
func NewCreator(signer Signer, expiry time.Duration) *Creator {
	return &Creator{
		signer: signer,
		expiry: expiry,
	}
}

// CreateAccessToken signs an access token carrying the account's identity
// and effective permission profile.
func (c *Creator) CreateAccessToken(user *users.User) (string, *token.Claims, error) {
	now := NowTimeFunc()
	claims := &token.Claims{
		Subject:        user.ID,
		Name:           user.Name,
		PhoneNumber:    user.PhoneNumber,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		Permission:     user.EffectivePermission().Clone(),
		IssuedAt:       now.Unix(),
		ExpiresAt:      now.Add(c.expiry).Unix(),
		ID:             uuid.New().String(), // Unique token ID for revocation
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Creator.CreateAccessToken]")
	}
	return signed, claims, nil
}
