package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/authapi"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func jsonHandler(t *testing.T, method, path string, status int, body any, inspect func(r *http.Request)) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method || r.URL.Path != path {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

func TestLogin_Success(t *testing.T) {
	var got authapi.LoginRequest
	srv := httptest.NewServer(jsonHandler(t, http.MethodPost, authapi.RouteLogin, http.StatusOK,
		authapi.AuthResponse{Data: authapi.AuthData{
			TokenPair: authapi.TokenPair{AccessToken: "T1", RefreshToken: "R1"},
			Profile:   authapi.Profile{ID: "u1", Name: "Alice", PhoneNumber: "0901234567", Role: "admin", OrganizationID: "org1"},
		}},
		func(r *http.Request) {
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NotEmpty(t, r.Header.Get(authapi.HeaderRequestID))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}))
	defer srv.Close()

	resp, err := authapi.New(srv.URL).Login(context.Background(), authapi.LoginRequest{PhoneNumber: "0901234567", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "T1", resp.Data.AccessToken)
	require.Equal(t, "R1", resp.Data.RefreshToken)
	require.Equal(t, "Alice", resp.Data.Profile.Name)
	require.Equal(t, "0901234567", got.PhoneNumber)
	require.Equal(t, "secret", got.Password)
}

func TestLogin_ServerMessageIsVerbatim(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.MethodPost, authapi.RouteLogin, http.StatusUnauthorized,
		map[string]any{"statusCode": 401, "message": "Số điện thoại hoặc mật khẩu không đúng", "error": "Unauthorized"}, nil))
	defer srv.Close()

	_, err := authapi.New(srv.URL).Login(context.Background(), authapi.LoginRequest{PhoneNumber: "0901234567", Password: "bad"})
	require.Error(t, err)
	require.Equal(t, "Số điện thoại hoặc mật khẩu không đúng", err.Error())

	var apiErr *authapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSignup_ValidationMessages(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.MethodPost, authapi.RouteSignup, http.StatusBadRequest,
		map[string]any{"statusCode": 400, "message": []string{"name should not be empty", "password is too weak"}}, nil))
	defer srv.Close()

	_, err := authapi.New(srv.URL).Signup(context.Background(), authapi.SignupRequest{PhoneNumber: "0901234567"})
	require.EqualError(t, err, "name should not be empty; password is too weak")
}

func TestRefreshToken_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.MethodPost, authapi.RouteRefreshToken, http.StatusOK,
		authapi.RefreshResponse{Data: authapi.TokenPair{AccessToken: "T2", RefreshToken: "R2"}},
		func(r *http.Request) {
			var req authapi.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "R1", req.RefreshToken)
		}))
	defer srv.Close()

	pair, err := authapi.New(srv.URL).RefreshToken(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "T2", pair.AccessToken)
	require.Equal(t, "R2", pair.RefreshToken)
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := authapi.New(srv.URL).RefreshToken(context.Background(), "R1")
	require.EqualError(t, err, "auth service returned status 502")
}

func TestLogout_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.MethodPost, authapi.RouteLogout, http.StatusOK,
		authapi.MessageResponse{Message: "Logged out"},
		func(r *http.Request) {
			require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		}))
	defer srv.Close()

	require.NoError(t, authapi.New(srv.URL).Logout(context.Background(), "T1"))
}

func TestProfile_UsesTokenSource(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.MethodGet, authapi.RouteProfile, http.StatusOK,
		authapi.ProfileResponse{Data: authapi.Profile{ID: "u1", Name: "Alice"}},
		func(r *http.Request) {
			require.Equal(t, "Bearer T9", r.Header.Get("Authorization"))
		}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "T9", TokenType: "Bearer"})
	profile, err := authapi.New(srv.URL).Authenticated(ts).Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.Name)
}

func TestConnectionError(t *testing.T) {
	_, err := authapi.New("http://127.0.0.1:1").Login(context.Background(), authapi.LoginRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot connect to auth service")
}

func TestContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := authapi.New(srv.URL).Login(ctx, authapi.LoginRequest{})
	require.EqualError(t, err, "request canceled")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := authapi.New(srv.URL, authapi.WithTimeout(20*time.Millisecond)).Login(context.Background(), authapi.LoginRequest{})
	require.EqualError(t, err, "request timed out")
}

func TestMessage_RoundTrip(t *testing.T) {
	var m authapi.Message
	require.NoError(t, json.Unmarshal([]byte(`"one"`), &m))
	require.Equal(t, "one", m.String())

	out, err := json.Marshal(authapi.Message{"a", "b"})
	require.NoError(t, err)
	require.JSONEq(t, `["a","b"]`, string(out))

	require.Error(t, json.Unmarshal([]byte(`42`), &m))
}
