// Package authapi is the HTTP client of the remote auth service.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the auth service. Error returns the
// server's message verbatim so it can be shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the remote auth service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a client for the service at baseURL (e.g., "https://api.example.com")
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the service URL the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticated returns a copy of the client whose requests carry a bearer
// token taken from ts
func (c *Client) Authenticated(ts oauth2.TokenSource) *Client {
	return &Client{
		baseURL: c.baseURL,
		httpClient: &http.Client{
			Timeout: c.httpClient.Timeout,
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   c.httpClient.Transport,
			},
		},
	}
}

// Login exchanges a phone number and password for a token pair and profile
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, RouteLogin, req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup creates an account and logs it in
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, RouteSignup, req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a new pair
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var resp RefreshResponse
	if err := c.do(ctx, http.MethodPost, RouteRefreshToken, RefreshRequest{RefreshToken: refreshToken}, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Logout asks the service to invalidate the session of accessToken
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var resp MessageResponse
	bearer := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if err := c.do(ctx, http.MethodPost, RouteLogout, struct{}{}, &resp, bearer.SetAuthHeader); err != nil {
		return err
	}
	log.Debug().Str("message", resp.Message).Msg("logout acknowledged")
	return nil
}

// Profile returns the account behind the current access token. It needs a
// client from Authenticated.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var resp ProfileResponse
	if err := c.do(ctx, http.MethodGet, RouteProfile, nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authorize func(*http.Request)) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, uuid.New().String())
	if authorize != nil {
		authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return err
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("request canceled")
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("request timed out")
		}
		return fmt.Errorf("cannot connect to auth service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from auth service: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && len(errResp.Message) > 0 {
		apiErr.Message = errResp.Message.String()
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("auth service returned status %d", resp.StatusCode)
	return apiErr
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
