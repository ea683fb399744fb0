package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type User struct {
	ID             string            `json:"id,omitempty"`              // Unique identifier for the user
	Name           string            `json:"name,omitempty"`            // Display name
	PhoneNumber    string            `json:"phone_number,omitempty"`    // Normalised phone number, the login name
	PasswordHash   string            `json:"-"`                         // Hashed password - never serialize
	Role           token.Role        `json:"role,omitempty"`            // Dashboard role
	OrganizationID string            `json:"organization_id,omitempty"` // Organization the account belongs to
	Permission     *token.Permission `json:"permission,omitempty"`      // Permission profile, nil falls back to the role default
	Blocked        bool              `json:"blocked,omitempty"`         // Blocked accounts cannot log in
	CreatedAt      time.Time         `json:"created_at,omitempty"`
	LastLogin      time.Time         `json:"last_login,omitempty"`
}

// Clone returns a deep copy of u
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Permission = u.Permission.Clone()
	return &cp
}

// EffectivePermission is the account's own permission profile, or the
// default profile of its role.
func (u *User) EffectivePermission() *token.Permission {
	if u.Permission != nil {
		return u.Permission
	}
	return DefaultPermission(u.Role)
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// NormalizePhoneNumber strips separators and converts the +84 / 84 country
// prefix to the national 0 prefix. The result must be a 10 digit number
// starting with 0.
func NormalizePhoneNumber(raw string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '-' || r == '(' || r == ')':
		case r == '+' && i == 0:
		default:
			return "", apperrors.Wrapf(apperrors.ErrInvalidPhoneNumber, "unexpected character %q", r)
		}
	}

	phone := b.String()
	if strings.HasPrefix(phone, "84") && len(phone) == 11 {
		phone = "0" + phone[2:]
	}
	if len(phone) != 10 || phone[0] != '0' {
		return "", apperrors.Wrapf(apperrors.ErrInvalidPhoneNumber, "%q", raw)
	}
	return phone, nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains at least one letter
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}

	var (
		hasLetter bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
