package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Role is the account role carried in the access token
type Role string

const (
	RoleAdmin   Role = "admin"   // Full access across the organization
	RoleManager Role = "manager" // Manages agents, contracts and territories
	RoleAgent   Role = "agent"   // Distribution agent
	RoleSeller  Role = "seller"  // Retail seller under an agent
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent, RoleSeller:
		return true
	}
	return false
}

// Action is a bit in a per-resource permission mask
type Action int

const (
	ActionRead   Action = 1 << iota // 1
	ActionCreate                    // 2
	ActionUpdate                    // 4
	ActionDelete                    // 8
)

// Permission describes what the holder may do, per resource
type Permission struct {
	Code    string         `json:"code" yaml:"code"`
	Name    string         `json:"name" yaml:"name"`
	Actions map[string]int `json:"actions,omitempty" yaml:"actions,omitempty"` // resource -> Action bitmask
}

// Clone returns a deep copy of p
func (p *Permission) Clone() *Permission {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Actions != nil {
		cp.Actions = make(map[string]int, len(p.Actions))
		for k, v := range p.Actions {
			cp.Actions[k] = v
		}
	}
	return &cp
}

// Can reports whether the permission grants action on resource
func (p *Permission) Can(resource string, action Action) bool {
	if p == nil {
		return false
	}
	mask, ok := p.Actions[resource]
	if !ok {
		return false
	}
	return Action(mask)&action == action
}

// Claims is the payload of an access token. Timestamps are seconds since
// the epoch; zero means the claim is absent.
type Claims struct {
	Subject        string      `json:"sub" yaml:"sub"`
	Name           string      `json:"name" yaml:"name"`
	PhoneNumber    string      `json:"phone_number" yaml:"phone_number"`
	Role           Role        `json:"role" yaml:"role"`
	OrganizationID string      `json:"organization_id" yaml:"organization_id"`
	Permission     *Permission `json:"permission" yaml:"permission,omitempty"`
	IssuedAt       int64       `json:"iat,omitempty" yaml:"iat,omitempty"`
	ExpiresAt      int64       `json:"exp,omitempty" yaml:"exp,omitempty"`
	ID             string      `json:"jti,omitempty" yaml:"jti,omitempty"`
}

var _ jwtlib.Claims = (*Claims)(nil)

// Clone returns a deep copy of c
func (c *Claims) Clone() *Claims {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Permission = c.Permission.Clone()
	return &cp
}

// Expiry returns the expiry as a time, or the zero time when absent
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

func (c *Claims) GetExpirationTime() (*jwtlib.NumericDate, error) {
	return numericDate(c.ExpiresAt), nil
}

func (c *Claims) GetIssuedAt() (*jwtlib.NumericDate, error) {
	return numericDate(c.IssuedAt), nil
}

func (c *Claims) GetNotBefore() (*jwtlib.NumericDate, error) {
	return nil, nil
}

func (c *Claims) GetIssuer() (string, error) {
	return "", nil
}

func (c *Claims) GetSubject() (string, error) {
	return c.Subject, nil
}

func (c *Claims) GetAudience() (jwtlib.ClaimStrings, error) {
	return nil, nil
}

func numericDate(unix int64) *jwtlib.NumericDate {
	if unix == 0 {
		return nil
	}
	return jwtlib.NewNumericDate(time.Unix(unix, 0))
}
