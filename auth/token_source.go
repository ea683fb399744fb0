package auth

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// TokenSource returns an oauth2.TokenSource backed by the session. Each
// call refreshes first when the access token expires within window.
// Errors wrap ErrUnauthorized once no valid session is left.
func (s *Service) TokenSource(ctx context.Context, window time.Duration) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, svc: s, window: window}
}

type sessionTokenSource struct {
	ctx    context.Context
	svc    *Service
	window time.Duration
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	if _, err := ts.svc.RefreshIfExpiringSoon(ts.ctx, ts.window); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	state := ts.svc.store.Snapshot()
	if !state.IsAuthenticated {
		return nil, fmt.Errorf("%w: not logged in", apperrors.ErrUnauthorized)
	}
	claims, err := ts.svc.codec.Decode(state.AccessToken)
	if err != nil || ts.svc.codec.IsExpired(state.AccessToken) {
		return nil, fmt.Errorf("%w: access token expired", apperrors.ErrUnauthorized)
	}
	return &oauth2.Token{
		AccessToken:  state.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: state.RefreshToken,
		Expiry:       claims.Expiry(),
	}, nil
}

// KeepAlive checks the session every interval and refreshes it when the
// access token expires within window. It returns when ctx is done.
func KeepAlive(ctx context.Context, svc *Service, interval, window time.Duration) error {
	if interval <= 0 {
		return errors.Wrapf(apperrors.ErrInvalidRequest, "[KeepAlive] interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refreshed, err := svc.RefreshIfExpiringSoon(ctx, window)
			if err != nil {
				log.Warn().Err(err).Msg("keep-alive refresh failed")
				continue
			}
			if refreshed {
				log.Debug().Msg("keep-alive refreshed the session")
			}
		}
	}
}
