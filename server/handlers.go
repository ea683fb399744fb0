package server

import (
	"net/http"

	"github.com/elousi1010/quanlyveso-sub000/authapi"
)

// LoginHandler exchanges a phone number and password for a token pair
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.PhoneNumber == "" || req.Password == "" {
			writeErrorMessage(w, http.StatusBadRequest, "phone_number is required", "password is required")
			return
		}

		data, err := s.accounts.Login(req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authapi.AuthResponse{Data: *data})
	}
}

// SignupHandler registers an account and logs it in
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.SignupRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		data, err := s.accounts.Signup(req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, authapi.AuthResponse{Data: *data})
	}
}

// RefreshTokenHandler rotates a refresh token
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.RefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		pair, err := s.accounts.Refresh(req.RefreshToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authapi.RefreshResponse{Data: *pair})
	}
}

// LogoutHandler revokes the caller's tokens. Runs behind RequireAuth.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if err := s.accounts.Logout(accessTokenFromContext(r.Context()), claims); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authapi.MessageResponse{Message: "Logged out successfully"})
	}
}

// ProfileHandler returns the caller's profile. Runs behind RequireAuth.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		profile, err := s.accounts.Profile(claims)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authapi.ProfileResponse{Data: *profile})
	}
}

// NotFoundHandler answers unknown routes in the API error format
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	}
}
