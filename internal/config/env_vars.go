package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar      = "APP_NAME"
	apiBaseURLVar   = "QLVS_API_URL"
	stateStoreVar   = "QLVS_STATE_STORE"
	stateFileVar    = "QLVS_STATE_FILE"
	redisAddrVar    = "REDIS_ADDR"
	redisPassVar    = "REDIS_PASSWORD"
	redisDBVar      = "REDIS_DB"
	keyNamespaceVar = "QLVS_KEY_NAMESPACE"
)

// Supported values for QLVS_STATE_STORE
const (
	StateStoreFile  = "file"
	StateStoreRedis = "redis"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Quan Ly Ve So")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv("LOG_LEVEL", "info")
}

// GetAPIBaseURL returns the base URL of the remote auth service (e.g., "https://api.example.com")
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetStateStore() string {
	return GetEnv(stateStoreVar, StateStoreFile)
}

// GetStateFile defaults to a file under the user's config directory
func (EnvVars) GetStateFile() string {
	if f := os.Getenv(stateFileVar); f != "" {
		return f
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".quanlyveso-session.yaml"
	}
	return filepath.Join(dir, "quanlyveso", "session.yaml")
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (EnvVars) GetRedisPassword() string {
	return GetEnv(redisPassVar, "")
}

func (EnvVars) GetRedisDB() int {
	db, err := strconv.Atoi(GetEnv(redisDBVar, "0"))
	if err != nil {
		return 0
	}
	return db
}

// GetKeyNamespace is the prefix of the persisted session keys
func (EnvVars) GetKeyNamespace() string {
	return GetEnv(keyNamespaceVar, "auth-storage")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration falls back to defaultValue for unparsable or non-positive values
func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
