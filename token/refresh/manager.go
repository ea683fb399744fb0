package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation. Each
// user holds at most one refresh token.
type Manager struct {
	repo   Repo
	length int
	expiry time.Duration
}

// NewManager creates a new refresh token manager issuing tokens of length
// random bytes that expire after expiry
func NewManager(repo Repo, length int, expiry time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		length: length,
		expiry: expiry,
	}
}

// Issue generates a new refresh token for userID, replacing any previous one
func (m *Manager) Issue(userID string) (string, error) {
	if err := m.Revoke(userID); err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] failed to delete existing refresh token")
	}

	tokenBytes := make([]byte, m.length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] failed to generate random bytes")
	}

	now := NowTimeFunc()
	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		Iat:       now,
		ExpiresAt: now.Add(m.expiry),
	}); err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] failed to store refresh token")
	}

	return tokenStr, nil
}

// Rotate validates token and exchanges it for a new one. The presented
// token is consumed even when it turns out to be expired.
func (m *Manager) Rotate(token string) (*StoredRefreshToken, string, error) {
	stored, err := m.repo.Get(token)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "[Manager.Rotate]")
	}

	if m.IsExpired(stored) {
		if err := m.repo.Delete(token); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", errors.Wrap(err, "[Manager.Rotate] failed to delete expired token")
		}
		return nil, "", apperrors.ErrRefreshTokenExpired
	}

	next, err := m.Issue(stored.UserID)
	if err != nil {
		return nil, "", err
	}
	return stored, next, nil
}

// Revoke deletes the refresh token held by userID, if any
func (m *Manager) Revoke(userID string) error {
	existing, err := m.repo.GetByUserID(userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.repo.Delete(existing.Token); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// IsExpired checks if a refresh token has expired
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return !NowTimeFunc().Before(rt.ExpiresAt)
}
