package session

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Listener is called with a fresh snapshot after every mutation
type Listener func(State)

type persistMode int

const (
	persistNone persistMode = iota
	persistSave
	persistDelete
)

// Store holds the one client session of the process. It is created at
// startup, restored from its Repo, and handed to every consumer.
//
// IsAuthenticated is never stored; it is derived from the presence of the
// user and the access token so the two can never disagree.
type Store struct {
	mu           sync.RWMutex
	repo         Repo
	codec        *token.Codec
	user         *token.Claims
	accessToken  string
	refreshToken string
	isLoading    bool
	errMsg       string
	initialized  bool

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithCodec sets the token codec (primarily for testing with a fixed clock)
func WithCodec(codec *token.Codec) StoreOption {
	return func(s *Store) {
		s.codec = codec
	}
}

// NewStore creates an empty, unauthenticated store. Call Restore before
// handing it to consumers.
func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] repo is required")
	}

	s := &Store{
		repo:      repo,
		codec:     token.NewCodec(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Restore rehydrates the session from the repo. A missing record leaves
// the store empty. The store counts as initialized afterwards either way.
func (s *Store) Restore(ctx context.Context) error {
	record, err := s.repo.Load(ctx)

	s.mu.Lock()
	s.initialized = true
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(err, "[Store.Restore] repo.Load")
	}

	s.user = record.User.Clone()
	s.accessToken = record.AccessToken
	s.refreshToken = record.RefreshToken
	if s.user == nil && s.accessToken != "" {
		s.deriveIdentityLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	log.Debug().Bool("authenticated", snap.IsAuthenticated).Msg("session restored")
	s.notify(snap)
	return nil
}

// Initialized reports whether Restore has run
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// SetTokens replaces both tokens as a pair and clears the error. The user
// is left untouched.
func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return errors.Wrap(apperrors.ErrMalformedToken, "[Store.SetTokens] empty access token")
	}
	return s.update(ctx, persistSave, func() {
		s.accessToken = accessToken
		s.refreshToken = refreshToken
		s.errMsg = ""
	})
}

// SetUser replaces the current identity and clears the error
func (s *Store) SetUser(ctx context.Context, user *token.Claims) error {
	if user == nil {
		return errors.Wrap(apperrors.ErrInvalidRequest, "[Store.SetUser] nil user")
	}
	user = user.Clone()
	return s.update(ctx, persistSave, func() {
		s.user = user
		s.errMsg = ""
	})
}

// UpdateTokens is SetTokens followed by re-deriving the identity from the
// new access token. When the token cannot be decoded the previous user is
// kept.
func (s *Store) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return errors.Wrap(apperrors.ErrMalformedToken, "[Store.UpdateTokens] empty access token")
	}
	return s.update(ctx, persistSave, func() {
		s.accessToken = accessToken
		s.refreshToken = refreshToken
		s.errMsg = ""
		s.deriveIdentityLocked()
	})
}

// Establish applies SetUser then SetTokens as one step, so no reader sees
// the intermediate state and the repo is written once.
func (s *Store) Establish(ctx context.Context, user *token.Claims, accessToken, refreshToken string) error {
	if user == nil {
		return errors.Wrap(apperrors.ErrInvalidRequest, "[Store.Establish] nil user")
	}
	if accessToken == "" {
		return errors.Wrap(apperrors.ErrMalformedToken, "[Store.Establish] empty access token")
	}
	user = user.Clone()
	return s.update(ctx, persistSave, func() {
		s.user = user
		s.accessToken = accessToken
		s.refreshToken = refreshToken
		s.errMsg = ""
	})
}

func (s *Store) SetLoading(loading bool) {
	_ = s.update(context.Background(), persistNone, func() {
		s.isLoading = loading
	})
}

// SetError records msg as the last error; "" clears it
func (s *Store) SetError(msg string) {
	_ = s.update(context.Background(), persistNone, func() {
		s.errMsg = msg
	})
}

// ClearAuth resets every field and deletes the persisted record. It is
// the only way to end a session.
func (s *Store) ClearAuth(ctx context.Context) error {
	return s.clear(ctx, "")
}

// ClearAuthWithError is ClearAuth that leaves msg as the error, so
// consumers can tell the user why the session ended.
func (s *Store) ClearAuthWithError(ctx context.Context, msg string) error {
	return s.clear(ctx, msg)
}

func (s *Store) clear(ctx context.Context, msg string) error {
	return s.update(ctx, persistDelete, func() {
		s.user = nil
		s.accessToken = ""
		s.refreshToken = ""
		s.isLoading = false
		s.errMsg = msg
	})
}

// IsTokenValid reports whether an access token is present and unexpired
func (s *Store) IsTokenValid() bool {
	access := s.AccessToken()
	return access != "" && !s.codec.IsExpired(access)
}

// IsTokenExpiringSoon reports whether the access token expires within
// window. Without a token there is nothing to refresh, so it is false.
func (s *Store) IsTokenExpiringSoon(window time.Duration) bool {
	access := s.AccessToken()
	if access == "" {
		return false
	}
	return s.codec.ExpiresWithin(access, window)
}

// Snapshot returns a copy of the whole state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

// User returns a copy of the current identity, nil when logged out
func (s *Store) User() *token.Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// Err returns the last error message, "" when none
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Codec returns the codec the store decodes tokens with
func (s *Store) Codec() *token.Codec {
	return s.codec
}

// Subscribe registers fn for change notifications. Listeners run on the
// mutating goroutine after the lock is released.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// update applies fn and the persistence step under the write lock, so the
// persisted record always matches the in-memory order of mutations. A
// persistence failure does not roll back the in-memory change.
func (s *Store) update(ctx context.Context, mode persistMode, fn func()) error {
	s.mu.Lock()
	fn()

	var err error
	switch mode {
	case persistSave:
		err = s.repo.Save(ctx, s.recordLocked())
	case persistDelete:
		err = s.repo.Delete(ctx)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("session: failed to persist session state")
		err = errors.Wrap(err, "[Store] persist")
	}
	s.notify(snap)
	return err
}

// deriveIdentityLocked overwrites the user with the claims of the current
// access token. An undecodable token leaves the stale user in place.
func (s *Store) deriveIdentityLocked() {
	claims, err := s.codec.Decode(s.accessToken)
	if err != nil {
		log.Debug().Err(err).Msg("session: keeping previous identity, access token not decodable")
		return
	}
	s.user = claims
}

func (s *Store) authenticatedLocked() bool {
	return s.user != nil && s.accessToken != ""
}

func (s *Store) recordLocked() *Record {
	return &Record{
		User:            s.user.Clone(),
		IsAuthenticated: s.authenticatedLocked(),
		AccessToken:     s.accessToken,
		RefreshToken:    s.refreshToken,
	}
}

func (s *Store) snapshotLocked() State {
	return State{
		IsAuthenticated: s.authenticatedLocked(),
		User:            s.user.Clone(),
		AccessToken:     s.accessToken,
		RefreshToken:    s.refreshToken,
		IsLoading:       s.isLoading,
		Error:           s.errMsg,
	}
}

func (s *Store) notify(snap State) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
