package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/authapi"
	"github.com/elousi1010/quanlyveso-sub000/session"
)

// sessionView is the JSON shape of a session shown to the user. Tokens
// are never printed.
type sessionView struct {
	Authenticated  bool       `json:"authenticated"`
	UserID         string     `json:"user_id,omitempty"`
	Name           string     `json:"name,omitempty"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	Role           string     `json:"role,omitempty"`
	OrganizationID string     `json:"organization_id,omitempty"`
	Permission     string     `json:"permission,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	TokenValid     bool       `json:"token_valid"`
	ExpiringSoon   bool       `json:"expiring_soon"`
	HasRefresh     bool       `json:"has_refresh_token"`
	Error          string     `json:"error,omitempty"`
}

func viewOf(store *session.Store, window time.Duration) sessionView {
	st := store.Snapshot()
	v := sessionView{
		Authenticated: st.IsAuthenticated,
		TokenValid:    store.IsTokenValid(),
		ExpiringSoon:  store.IsTokenExpiringSoon(window),
		HasRefresh:    st.RefreshToken != "",
		Error:         st.Error,
	}
	if u := st.User; u != nil {
		v.UserID = u.Subject
		v.Name = u.Name
		v.PhoneNumber = u.PhoneNumber
		v.Role = string(u.Role)
		v.OrganizationID = u.OrganizationID
		if u.Permission != nil {
			v.Permission = u.Permission.Code
		}
		if exp := u.Expiry(); !exp.IsZero() {
			v.ExpiresAt = &exp
		}
	}
	return v
}

func writeJSONOut(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printSession(w io.Writer, v sessionView) {
	if IsJSONOutput() {
		writeJSONOut(w, v)
		return
	}
	if !v.Authenticated {
		fmt.Fprintln(w, "Not logged in")
		if v.Error != "" {
			fmt.Fprintf(w, "Last error: %s\n", v.Error)
		}
		return
	}
	fmt.Fprintf(w, "Logged in as %s (%s)\n", v.Name, v.PhoneNumber)
	fmt.Fprintf(w, "  User ID:      %s\n", v.UserID)
	fmt.Fprintf(w, "  Role:         %s\n", v.Role)
	if v.OrganizationID != "" {
		fmt.Fprintf(w, "  Organization: %s\n", v.OrganizationID)
	}
	if v.Permission != "" {
		fmt.Fprintf(w, "  Permission:   %s\n", v.Permission)
	}
	switch {
	case v.ExpiresAt == nil:
		fmt.Fprintln(w, "  Token:        no expiry")
	case !v.TokenValid:
		fmt.Fprintf(w, "  Token:        expired at %s\n", v.ExpiresAt.Local().Format(time.RFC3339))
	case v.ExpiringSoon:
		fmt.Fprintf(w, "  Token:        expiring soon (%s)\n", v.ExpiresAt.Local().Format(time.RFC3339))
	default:
		fmt.Fprintf(w, "  Token:        valid until %s\n", v.ExpiresAt.Local().Format(time.RFC3339))
	}
	if v.Error != "" {
		fmt.Fprintf(w, "  Last error:   %s\n", v.Error)
	}
}

// printFailure reports err and returns the exit code for a failed command
func printFailure(w io.Writer, action string, err error) int {
	msg := userMessage(err)
	if IsJSONOutput() {
		writeJSONOut(w, map[string]string{"error": msg})
	} else {
		fmt.Fprintf(w, "%s failed: %s\n", action, msg)
	}
	return 1
}

// userMessage prefers the server's own wording over the wrapped chain
func userMessage(err error) string {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
