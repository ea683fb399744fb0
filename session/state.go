package session

import "github.com/elousi1010/quanlyveso-sub000/token"

// State is a point-in-time copy of the client session
type State struct {
	IsAuthenticated bool          // True iff User and AccessToken are both present
	User            *token.Claims // Identity of the logged in user
	AccessToken     string        // Short-lived bearer credential
	RefreshToken    string        // Used only to obtain a new token pair
	IsLoading       bool          // A session operation is waiting on the network
	Error           string        // Last operation's error message, "" when none
}

// Record is the persisted part of the session. It is written as one unit
// so the tokens and the identity derived from them never diverge on disk.
type Record struct {
	User            *token.Claims `json:"user,omitempty" yaml:"user,omitempty"`
	IsAuthenticated bool          `json:"isAuthenticated" yaml:"is_authenticated"`
	AccessToken     string        `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	RefreshToken    string        `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
}
