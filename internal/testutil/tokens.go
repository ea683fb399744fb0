// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/token"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

const signingKey = "testutil-secret"

// MintToken signs claims with a throwaway HS256 key. The session core
// never verifies signatures, so any key will do.
func MintToken(t testing.TB, claims *token.Claims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	return raw
}

// MintExpiring returns a token for subject issued at now that expires after ttl
func MintExpiring(t testing.TB, subject string, now time.Time, ttl time.Duration) string {
	t.Helper()
	return MintToken(t, &token.Claims{
		Subject:   subject,
		Name:      "User " + subject,
		Role:      token.RoleAgent,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
}

// Clock is a settable time source for tests
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
