package authapi

import (
	"encoding/json"
	"strings"
)

// Endpoint paths of the remote auth service
const (
	RouteLogin        = "/auth/login"
	RouteSignup       = "/auth/signup"
	RouteRefreshToken = "/auth/refresh-token"
	RouteLogout       = "/auth/logout"
	RouteProfile      = "/auth/profile"
)

// HeaderRequestID correlates client requests with server logs
const HeaderRequestID = "X-Request-ID"

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type SignupRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Profile is the account summary returned with every login or signup
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
}

// TokenPair is a matching access and refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthData is the payload of a login or signup response
type AuthData struct {
	TokenPair
	Profile Profile `json:"profile"`
}

// AuthResponse is returned by POST /auth/login and POST /auth/signup
type AuthResponse struct {
	Data AuthData `json:"data"`
}

// RefreshResponse is returned by POST /auth/refresh-token
type RefreshResponse struct {
	Data TokenPair `json:"data"`
}

// ProfileResponse is returned by GET /auth/profile
type ProfileResponse struct {
	Data Profile `json:"data"`
}

// MessageResponse is returned by POST /auth/logout
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body of every endpoint. Message may arrive as a
// string or as a list of validation messages.
type ErrorResponse struct {
	StatusCode int     `json:"statusCode,omitempty"`
	Message    Message `json:"message"`
	Error      string  `json:"error,omitempty"`
}

// Message decodes either a JSON string or a list of strings
type Message []string

func (m Message) String() string {
	return strings.Join(m, "; ")
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = Message{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*m = list
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}
