package server

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/elousi1010/quanlyveso-sub000/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// BootstrapAdmin creates the administrator account when it does not exist
// yet. When no password is configured one is generated and returned, so
// it can be shown once; otherwise the returned password is "".
func (s *Server) BootstrapAdmin(cfg config.ServerConfig) (generatedPassword string, err error) {
	phone, err := users.NormalizePhoneNumber(cfg.GetAdminPhoneNumber())
	if err != nil {
		return "", errors.Wrap(err, "[Server.BootstrapAdmin] admin phone number")
	}

	if _, err := s.accounts.repos.Users.GetByPhoneNumber(phone); err == nil {
		log.Debug().Str("phone_number", phone).Msg("admin account already exists")
		return "", nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return "", errors.Wrap(err, "[Server.BootstrapAdmin]")
	}

	password := cfg.GetAdminPassword()
	if password == "" {
		if password, err = generateSecurePassword(); err != nil {
			return "", err
		}
		generatedPassword = password
	}

	user, err := s.accounts.CreateUser(cfg.GetAdminName(), phone, password, token.RoleAdmin, "")
	if err != nil {
		return "", errors.Wrap(err, "[Server.BootstrapAdmin]")
	}
	log.Info().Str("user_id", user.ID).Str("phone_number", phone).Msg("admin account created")
	return generatedPassword, nil
}

// generateSecurePassword returns a random password that satisfies
// ValidatePasswordStrength
func generateSecurePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate password")
	}
	return "Qv1" + base64.RawURLEncoding.EncodeToString(b), nil
}
