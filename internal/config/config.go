package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	SessionConfig
	ServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPIBaseURL() string
	GetStateStore() string
	GetStateFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetKeyNamespace() string
}

type SessionConfig interface {
	GetRefreshWindow() time.Duration
	GetRequestTimeout() time.Duration
	GetKeepAliveInterval() time.Duration
}

type ServerConfig interface {
	GetPort() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetAdminName() string
	GetAdminPhoneNumber() string
	GetAdminPassword() string
	GetAllowedOrigins() []string
}

type mainConfig struct {
	EnvVars
	Session
	Server
}

func New() Config {
	return mainConfig{}
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding variables already set in the process.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
