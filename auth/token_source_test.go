package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/auth"
	"github.com/elousi1010/quanlyveso-sub000/authapi"
	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestTokenSource_ReturnsCurrentToken(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, time.Hour)

	tok, err := f.service.TokenSource(context.Background(), 2*time.Minute).Token()
	require.NoError(t, err)
	require.Equal(t, f.store.AccessToken(), tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, "r1", tok.RefreshToken)
	require.Equal(t, testNow.Add(time.Hour).Unix(), tok.Expiry.Unix())
	require.Zero(t, f.client.refreshCalls.Load())
}

func TestTokenSource_RefreshesWhenExpiringSoon(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, 5*time.Minute)

	f.clock.Advance(4 * time.Minute)
	newAccess := f.accessFor(t, time.Hour)
	f.client.refresh = func(context.Context, string) (*authapi.TokenPair, error) {
		return &authapi.TokenPair{AccessToken: newAccess, RefreshToken: "r2"}, nil
	}

	tok, err := f.service.TokenSource(context.Background(), 2*time.Minute).Token()
	require.NoError(t, err)
	require.Equal(t, newAccess, tok.AccessToken)
	require.Equal(t, "r2", tok.RefreshToken)
	require.EqualValues(t, 1, f.client.refreshCalls.Load())
}

func TestTokenSource_Unauthorized(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.TokenSource(context.Background(), time.Minute).Token()
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	f.login(t, 5*time.Minute)
	f.clock.Advance(4 * time.Minute)
	f.client.refresh = func(context.Context, string) (*authapi.TokenPair, error) {
		return nil, &authapi.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid refresh token"}
	}

	_, err = f.service.TokenSource(context.Background(), 2*time.Minute).Token()
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.False(t, f.store.IsAuthenticated())
}

func TestTokenSource_DrivesAuthenticatedClient(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, time.Hour)
	access := f.store.AccessToken()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+access {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(authapi.ErrorResponse{StatusCode: http.StatusUnauthorized, Message: authapi.Message{"Unauthorized"}})
			return
		}
		_ = json.NewEncoder(w).Encode(authapi.ProfileResponse{Data: authapi.Profile{ID: "u1", Name: "Alice"}})
	}))
	defer srv.Close()

	client := authapi.New(srv.URL).Authenticated(f.service.TokenSource(context.Background(), 2*time.Minute))
	profile, err := client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.Name)
}

func TestKeepAlive_RefreshesUntilCanceled(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, time.Minute)

	newAccess := f.accessFor(t, time.Hour)
	f.client.refresh = func(context.Context, string) (*authapi.TokenPair, error) {
		return &authapi.TokenPair{AccessToken: newAccess, RefreshToken: "r2"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- auth.KeepAlive(ctx, f.service, 10*time.Millisecond, 2*time.Minute) }()

	require.Eventually(t, func() bool {
		return f.store.RefreshToken() == "r2"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("KeepAlive did not stop after cancel")
	}
	// the refreshed token lasts an hour, so no further refreshes happen
	require.EqualValues(t, 1, f.client.refreshCalls.Load())
}

func TestKeepAlive_RejectsNonPositiveInterval(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, time.Minute)

	for _, interval := range []time.Duration{0, -5 * time.Second} {
		err := auth.KeepAlive(context.Background(), f.service, interval, 2*time.Minute)
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	}
	require.Zero(t, f.client.refreshCalls.Load())
}
