package jwt

import (
	"sync"
	"time"
)

// RevocationList remembers revoked access tokens by JTI until they expire
type RevocationList struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

var _ RevokedChecker = (*RevocationList)(nil)

func NewRevocationList() *RevocationList {
	return &RevocationList{
		revoked: make(map[string]time.Time),
	}
}

func (c *RevocationList) Add(jti string, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
}

func (c *RevocationList) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

// Cleanup drops entries whose token has expired, since the inspector
// rejects those anyway
func (c *RevocationList) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := NowTimeFunc()
	removed := 0
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
			removed++
		}
	}
	return removed
}

func (c *RevocationList) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.revoked)
}
