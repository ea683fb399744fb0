package config

import (
	"fmt"
	"strings"
	"time"
)

// Server holds the settings of the development auth server
type Server struct{}

var _ ServerConfig = Server{}

func (Server) GetPort() string {
	port := GetEnv("PORT", "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Server) GetSigningSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}

func (Server) GetAccessTokenExpiry() time.Duration {
	return getDuration("ACCESS_TOKEN_EXPIRY", 1*time.Hour)
}

func (Server) GetRefreshTokenExpiry() time.Duration {
	return getDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour) // 7 days
}

func (Server) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

// GetAdminPhoneNumber is the login of the administrator account created at
// startup
func (Server) GetAdminPhoneNumber() string {
	return GetEnv("ADMIN_PHONE_NUMBER", "0900000000")
}

func (Server) GetAdminName() string {
	return GetEnv("ADMIN_NAME", "Administrator")
}

// GetAdminPassword returns "" when unset, in which case a password is
// generated and logged once
func (Server) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

// GetAllowedOrigins lists the browser origins allowed to call the API; "*"
// allows any origin without credentials
func (Server) GetAllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(GetEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
