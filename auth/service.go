package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/authapi"
	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/session"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Client is the remote auth service as seen by the Service. authapi.Client
// implements it.
type Client interface {
	Login(ctx context.Context, req authapi.LoginRequest) (*authapi.AuthResponse, error)
	Signup(ctx context.Context, req authapi.SignupRequest) (*authapi.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authapi.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

// Invalidator drops data cached on behalf of the session that just ended
type Invalidator interface {
	Invalidate()
}

// InvalidatorFunc adapts a plain function to Invalidator
type InvalidatorFunc func()

func (f InvalidatorFunc) Invalidate() { f() }

// Service runs the login, signup, refresh and logout flows against the
// remote auth service and records their outcome in the session store.
type Service struct {
	client       Client
	store        *session.Store
	codec        *token.Codec
	invalidators []Invalidator
	flight       singleflight.Group
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithCodec decodes access tokens with codec instead of the store's codec
func WithCodec(codec *token.Codec) ServiceOption {
	return func(s *Service) {
		s.codec = codec
	}
}

// WithInvalidators registers caches to drop whenever the session ends
func WithInvalidators(invalidators ...Invalidator) ServiceOption {
	return func(s *Service) {
		s.invalidators = append(s.invalidators, invalidators...)
	}
}

func NewService(client Client, store *session.Store, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] nil client")
	}
	if store == nil {
		return nil, errors.New("[NewService] nil session store")
	}
	s := &Service{
		client: client,
		store:  store,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.codec == nil {
		s.codec = store.Codec()
	}
	return s, nil
}

// Store returns the session store the service writes to
func (s *Service) Store() *session.Store {
	return s.store
}

// Login authenticates with a phone number and password. On failure the
// current session, if any, is left as it was and only the error is
// recorded. Only calls with identical credentials share a request.
func (s *Service) Login(ctx context.Context, phoneNumber, password string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := requireFields("phone_number", phoneNumber, "password", password); err != nil {
		return s.fail("Login", err)
	}
	req := authapi.LoginRequest{PhoneNumber: phoneNumber, Password: password}
	return s.coalesce("login", flightKey("login", phoneNumber, password), func() error {
		return s.establish(ctx, "Login", func(ctx context.Context) (*authapi.AuthResponse, error) {
			return s.client.Login(ctx, req)
		})
	})
}

// Signup creates an account and establishes a session for it, exactly like
// Login does on success.
func (s *Service) Signup(ctx context.Context, name, phoneNumber, password string) error {
	name = strings.TrimSpace(name)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := requireFields("name", name, "phone_number", phoneNumber, "password", password); err != nil {
		return s.fail("Signup", err)
	}
	req := authapi.SignupRequest{Name: name, PhoneNumber: phoneNumber, Password: password}
	return s.coalesce("signup", flightKey("signup", name, phoneNumber, password), func() error {
		return s.establish(ctx, "Signup", func(ctx context.Context) (*authapi.AuthResponse, error) {
			return s.client.Signup(ctx, req)
		})
	})
}

// RefreshToken exchanges refreshToken for a new pair. Any failure ends the
// session: the error is recorded and the store cleared.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) error {
	return s.coalesce("refresh", flightKey("refresh", refreshToken), func() error {
		return s.refresh(ctx, refreshToken)
	})
}

// Refresh is RefreshToken with the refresh token currently in the store
func (s *Service) Refresh(ctx context.Context) error {
	return s.RefreshToken(ctx, s.store.RefreshToken())
}

// RefreshIfExpiringSoon refreshes only when the access token expires
// within window, reporting whether a refresh was attempted.
func (s *Service) RefreshIfExpiringSoon(ctx context.Context, window time.Duration) (bool, error) {
	if !s.store.IsAuthenticated() || !s.store.IsTokenExpiringSoon(window) {
		return false, nil
	}
	return true, s.Refresh(ctx)
}

// Logout tells the server to invalidate the session and clears it locally
// whatever the server answers.
func (s *Service) Logout(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	accessToken := s.store.AccessToken()
	if accessToken != "" {
		s.store.SetLoading(true)
		if err := s.client.Logout(ctx, accessToken); err != nil {
			log.Warn().Err(err).Msg("server-side logout failed, clearing local session anyway")
		}
	}

	err := s.store.ClearAuth(ctx)
	s.invalidate()
	if err != nil {
		return errors.Wrap(err, "[Service.Logout] ClearAuth")
	}
	log.Info().Msg("logged out")
	return nil
}

func (s *Service) establish(ctx context.Context, op string, call func(context.Context) (*authapi.AuthResponse, error)) error {
	ctx = context.WithoutCancel(ctx)

	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	resp, err := call(ctx)
	if err != nil {
		return s.fail(op, err)
	}
	if resp.Data.AccessToken == "" {
		return s.fail(op, errors.Wrap(apperrors.ErrMalformedToken, "empty access token"))
	}

	claims, err := s.codec.Decode(resp.Data.AccessToken)
	if err != nil {
		return s.fail(op, err)
	}
	user := mergeProfile(claims, resp.Data.Profile)

	if err := s.store.Establish(ctx, user, resp.Data.AccessToken, resp.Data.RefreshToken); err != nil {
		return errors.Wrapf(err, "[Service.%s] Establish", op)
	}
	log.Info().Str("user_id", user.Subject).Str("role", string(user.Role)).Msgf("%s succeeded", strings.ToLower(op))
	return nil
}

func (s *Service) refresh(ctx context.Context, refreshToken string) error {
	ctx = context.WithoutCancel(ctx)

	if refreshToken == "" {
		return s.endSession(ctx, apperrors.ErrNoRefreshToken)
	}

	s.store.SetLoading(true)
	pair, err := s.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return s.endSession(ctx, err)
	}
	if pair.AccessToken == "" {
		return s.endSession(ctx, errors.Wrap(apperrors.ErrMalformedToken, "empty access token"))
	}

	err = s.store.UpdateTokens(ctx, pair.AccessToken, pair.RefreshToken)
	s.store.SetLoading(false)
	if err != nil {
		return errors.Wrap(err, "[Service.RefreshToken] UpdateTokens")
	}
	log.Debug().Msg("tokens refreshed")
	return nil
}

// fail records err without touching the session
func (s *Service) fail(op string, err error) error {
	log.Warn().Err(err).Str("operation", op).Msg("auth operation failed")
	s.store.SetError(err.Error())
	return errors.Wrapf(err, "[Service.%s]", op)
}

// endSession records err and tears the session down
func (s *Service) endSession(ctx context.Context, err error) error {
	log.Warn().Err(err).Msg("refresh failed, ending session")
	s.store.SetError(err.Error())
	if clearErr := s.store.ClearAuthWithError(ctx, err.Error()); clearErr != nil {
		log.Err(clearErr).Msg("failed to clear persisted session")
	}
	s.invalidate()
	return errors.Wrap(err, "[Service.RefreshToken]")
}

// coalesce runs fn once for all concurrent callers sharing key
func (s *Service) coalesce(op, key string, fn func() error) error {
	_, err, shared := s.flight.Do(key, func() (any, error) {
		return nil, fn()
	})
	if shared {
		log.Debug().Str("operation", op).Msg("call coalesced with an in-flight request")
	}
	return err
}

// flightKey identifies a request by all of its inputs. Secrets are hashed
// so they are not kept as map keys.
func flightKey(op string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return op + ":" + hex.EncodeToString(h.Sum(nil))
}

// requireFields takes name/value pairs and rejects the empty values
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i]+" is required")
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Wrap(apperrors.ErrInvalidRequest, strings.Join(missing, "; "))
}

func (s *Service) invalidate() {
	for _, inv := range s.invalidators {
		inv.Invalidate()
	}
}

// mergeProfile builds the session identity: profile fields win, decoded
// claims fill in what the profile does not carry.
func mergeProfile(claims *token.Claims, profile authapi.Profile) *token.Claims {
	user := claims.Clone()
	user.Subject = firstNonEmpty(profile.ID, claims.Subject)
	user.Name = firstNonEmpty(profile.Name, claims.Name)
	user.PhoneNumber = firstNonEmpty(profile.PhoneNumber, claims.PhoneNumber)
	user.Role = token.Role(firstNonEmpty(profile.Role, string(claims.Role)))
	user.OrganizationID = firstNonEmpty(profile.OrganizationID, claims.OrganizationID)
	return user
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
