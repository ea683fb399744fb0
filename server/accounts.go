package server

import (
	"strings"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/authapi"
	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/elousi1010/quanlyveso-sub000/token/jwt"
	"github.com/elousi1010/quanlyveso-sub000/token/refresh"
	"github.com/elousi1010/quanlyveso-sub000/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// signupRole is the role of self-registered accounts
const signupRole = token.RoleAgent

// Repos holds all repository dependencies for the Accounts service
type Repos struct {
	Users         users.UserRepo // Repository for user data
	RefreshTokens refresh.Repo   // Repository for refresh token metadata
}

// requestError is a validation failure whose message is shown to the
// client as is
type requestError string

func (e requestError) Error() string { return string(e) }

func (e requestError) Unwrap() error { return apperrors.ErrInvalidRequest }

func invalidRequest(msg string) error {
	return requestError(msg)
}

// Accounts implements the auth endpoints: credential checks, token issue,
// rotation and revocation.
type Accounts struct {
	repos     Repos
	creator   *jwt.Creator
	inspector *jwt.Inspector
	revoked   *jwt.RevocationList
	refresh   *refresh.Manager
}

func NewAccounts(repos Repos, cfg config.ServerConfig) (*Accounts, error) {
	signer, err := jwt.NewHMACSigner(cfg.GetSigningSecret())
	if err != nil {
		return nil, errors.Wrap(err, "[NewAccounts]")
	}
	revoked := jwt.NewRevocationList()
	return &Accounts{
		repos:     repos,
		creator:   jwt.NewCreator(signer, cfg.GetAccessTokenExpiry()),
		inspector: jwt.NewInspector(signer, revoked),
		revoked:   revoked,
		refresh:   refresh.NewManager(repos.RefreshTokens, cfg.GetRefreshTokenLength(), cfg.GetRefreshTokenExpiry()),
	}, nil
}

// Login checks the credentials and issues a token pair
func (a *Accounts) Login(req authapi.LoginRequest) (*authapi.AuthData, error) {
	phone, err := users.NormalizePhoneNumber(req.PhoneNumber)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	user, err := a.repos.Users.GetByPhoneNumber(phone)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Accounts.Login]")
	}
	if !user.CheckPassword(req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Blocked {
		return nil, apperrors.ErrUnauthorized
	}

	if err := a.repos.Users.SetLastLogin(phone, jwt.NowTimeFunc()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	return a.issue(user)
}

// Signup registers a new agent account and logs it in
func (a *Accounts) Signup(req authapi.SignupRequest) (*authapi.AuthData, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidRequest("name is required")
	}
	phone, err := users.NormalizePhoneNumber(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		return nil, invalidRequest(err.Error())
	}

	user, err := a.CreateUser(name, phone, req.Password, signupRole, "")
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("account registered")
	return a.issue(user)
}

// Refresh rotates refreshToken and issues a new pair for its owner
func (a *Accounts) Refresh(refreshToken string) (*authapi.TokenPair, error) {
	if refreshToken == "" {
		return nil, invalidRequest("refresh_token is required")
	}
	stored, next, err := a.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := a.repos.Users.GetByID(stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if user.Blocked {
		_ = a.refresh.Revoke(user.ID)
		return nil, apperrors.ErrUnauthorized
	}

	access, _, err := a.creator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Accounts.Refresh]")
	}
	return &authapi.TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout revokes the presented access token and the owner's refresh token
func (a *Accounts) Logout(accessToken string, claims *token.Claims) error {
	jti, exp, err := a.inspector.ExtractJTI(accessToken)
	if err != nil {
		return err
	}
	a.revoked.Add(jti, exp)
	if err := a.refresh.Revoke(claims.Subject); err != nil {
		return errors.Wrap(err, "[Accounts.Logout]")
	}
	return nil
}

// Authenticate verifies a bearer access token
func (a *Accounts) Authenticate(accessToken string) (*token.Claims, error) {
	return a.inspector.Verify(accessToken)
}

// Profile returns the current profile of the account behind claims
func (a *Accounts) Profile(claims *token.Claims) (*authapi.Profile, error) {
	user, err := a.repos.Users.GetByID(claims.Subject)
	if err != nil {
		return nil, err
	}
	profile := profileOf(user)
	return &profile, nil
}

// CreateUser stores a new account with a hashed password
func (a *Accounts) CreateUser(name, phone, password string, role token.Role, organizationID string) (*users.User, error) {
	if _, err := a.repos.Users.GetByPhoneNumber(phone); err == nil {
		return nil, apperrors.ErrPhoneNumberTaken
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Accounts.CreateUser] HashPassword")
	}
	user := &users.User{
		Name:           name,
		PhoneNumber:    phone,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: organizationID,
		CreatedAt:      jwt.NowTimeFunc(),
	}
	if err := a.repos.Users.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

// RunRevocationCleanup prunes expired entries from the revocation list
// every interval until stop is closed
func (a *Accounts) RunRevocationCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := a.revoked.Cleanup(); n > 0 {
				log.Debug().Int("removed", n).Msg("pruned revoked access tokens")
			}
		}
	}
}

func (a *Accounts) issue(user *users.User) (*authapi.AuthData, error) {
	access, _, err := a.creator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Accounts.issue]")
	}
	rt, err := a.refresh.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Accounts.issue]")
	}
	return &authapi.AuthData{
		TokenPair: authapi.TokenPair{AccessToken: access, RefreshToken: rt},
		Profile:   profileOf(user),
	}, nil
}

func profileOf(user *users.User) authapi.Profile {
	return authapi.Profile{
		ID:             user.ID,
		Name:           user.Name,
		PhoneNumber:    user.PhoneNumber,
		Role:           string(user.Role),
		OrganizationID: user.OrganizationID,
	}
}
