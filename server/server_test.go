package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/auth"
	"github.com/elousi1010/quanlyveso-sub000/authapi"
	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	"github.com/elousi1010/quanlyveso-sub000/server"
	"github.com/elousi1010/quanlyveso-sub000/session"
	sessionrepofake "github.com/elousi1010/quanlyveso-sub000/session/repofake"
	"github.com/elousi1010/quanlyveso-sub000/token"
	refreshrepofake "github.com/elousi1010/quanlyveso-sub000/token/refresh/repofake"
	fakeuserrepo "github.com/elousi1010/quanlyveso-sub000/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testPhone    = "0901234567"
	testPassword = "matkhau123"
)

type testFixture struct {
	server  *server.Server
	http    *httptest.Server
	client  *authapi.Client
	store   *session.Store
	service *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET", "server-test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://dashboard.local")
	t.Setenv("ADMIN_PASSWORD", "")

	srv, err := server.New(config.New(), server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client := authapi.New(ts.URL, authapi.WithTimeout(5*time.Second))
	store, err := session.NewStore(sessionrepofake.NewFakeSessionRepo())
	require.NoError(t, err)
	require.NoError(t, store.Restore(context.Background()))
	service, err := auth.NewService(client, store)
	require.NoError(t, err)

	return &testFixture{server: srv, http: ts, client: client, store: store, service: service}
}

func (f *testFixture) signup(t *testing.T) {
	t.Helper()
	require.NoError(t, f.service.Signup(context.Background(), "Nguyễn Văn A", testPhone, testPassword))
}

func (f *testFixture) profileWith(accessToken string) (*authapi.Profile, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return f.client.Authenticated(ts).Profile(context.Background())
}

func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *authapi.APIError
	require.True(t, errors.As(err, &apiErr), "expected an APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, message, apiErr.Message)
}

func TestSessionLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.signup(t)
	st := f.store.Snapshot()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "Nguyễn Văn A", st.User.Name)
	require.Equal(t, token.RoleAgent, st.User.Role)
	require.Equal(t, "agent", st.User.Permission.Code)
	require.True(t, f.store.IsTokenValid())
	require.False(t, f.store.IsTokenExpiringSoon(2*time.Minute))

	require.NoError(t, f.service.Logout(ctx))
	require.NoError(t, f.service.Login(ctx, "+84 901 234 567", testPassword))
	firstAccess := f.store.AccessToken()
	firstRefresh := f.store.RefreshToken()

	profile, err := f.client.Authenticated(f.service.TokenSource(ctx, 2*time.Minute)).Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, testPhone, profile.PhoneNumber)
	require.Equal(t, f.store.User().Subject, profile.ID)

	// refresh rotates the refresh token and retires the old one
	require.NoError(t, f.service.Refresh(ctx))
	require.NotEqual(t, firstRefresh, f.store.RefreshToken())
	require.True(t, f.store.IsAuthenticated())
	_, err = f.client.RefreshToken(ctx, firstRefresh)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid refresh token")

	// logout revokes the access token server side
	latestAccess := f.store.AccessToken()
	require.NoError(t, f.service.Logout(ctx))
	require.False(t, f.store.IsAuthenticated())

	_, err = f.profileWith(latestAccess)
	requireAPIError(t, err, http.StatusUnauthorized, "token revoked")

	// the first access token was not the one presented at logout
	_, err = f.profileWith(firstAccess)
	require.NoError(t, err)
}

func TestLogin_WrongPasswordKeepsServerMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.signup(t)
	before := f.store.Snapshot()

	err := f.service.Login(context.Background(), testPhone, "wrong-password1")
	requireAPIError(t, err, http.StatusUnauthorized, "invalid phone number or password")

	st := f.store.Snapshot()
	require.Equal(t, "invalid phone number or password", st.Error)
	require.True(t, st.IsAuthenticated)
	require.Equal(t, before.AccessToken, st.AccessToken)
}

func TestSignup_Validation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.client.Signup(ctx, authapi.SignupRequest{Name: "A", PhoneNumber: "12345", Password: testPassword})
	requireAPIError(t, err, http.StatusBadRequest, `"12345": invalid phone number`)

	_, err = f.client.Signup(ctx, authapi.SignupRequest{Name: "A", PhoneNumber: testPhone, Password: "short"})
	requireAPIError(t, err, http.StatusBadRequest, "password must be at least 8 characters long")

	f.signup(t)
	_, err = f.client.Signup(ctx, authapi.SignupRequest{Name: "B", PhoneNumber: testPhone, Password: testPassword})
	requireAPIError(t, err, http.StatusConflict, "phone number already registered")
}

func TestLogin_MissingFieldsReturnsMessageList(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := http.Post(f.http.URL+authapi.RouteLogin, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, []any{"phone_number is required", "password is required"}, body["message"])
	require.EqualValues(t, http.StatusBadRequest, body["statusCode"])
	require.Equal(t, "Bad Request", body["error"])

	_, err = f.client.Login(context.Background(), authapi.LoginRequest{})
	requireAPIError(t, err, http.StatusBadRequest, "phone_number is required; password is required")
}

func TestProtectedRoutes_RequireBearer(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Profile(context.Background())
	requireAPIError(t, err, http.StatusUnauthorized, "Missing Authorization header")

	_, err = f.profileWith("not-a-jwt")
	require.Error(t, err)
	var apiErr *authapi.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	err = f.client.Logout(context.Background(), "")
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid Authorization header format")
}

func TestBootstrapAdmin(t *testing.T) {
	f := setupTestFixture(t)
	cfg := config.New()

	password, err := f.server.BootstrapAdmin(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, password)

	again, err := f.server.BootstrapAdmin(cfg)
	require.NoError(t, err)
	require.Empty(t, again)

	require.NoError(t, f.service.Login(context.Background(), cfg.GetAdminPhoneNumber(), password))
	user := f.store.User()
	require.Equal(t, token.RoleAdmin, user.Role)
	require.Equal(t, "Administrator", user.Name)
}

func TestMiddleware(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, f.http.URL+authapi.RouteLogin, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://dashboard.local")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, "http://dashboard.local", resp.Header.Get("Access-Control-Allow-Origin"))
		require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("request id echoed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, f.http.URL+"/nowhere", nil)
		require.NoError(t, err)
		req.Header.Set(authapi.HeaderRequestID, "req-42")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "req-42", resp.Header.Get(authapi.HeaderRequestID))
	})

	t.Run("panic recovered", func(t *testing.T) {
		handler := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}, f.server.APIMiddleware()...)

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var body authapi.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "Internal server error", body.Message.String())
	})
}
