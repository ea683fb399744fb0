package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"QLVS_API_URL", "QLVS_STATE_STORE", "QLVS_REFRESH_WINDOW", "CORS_ALLOWED_ORIGINS", "PORT"} {
		t.Setenv(v, "")
	}
	cfg := config.New()

	require.Equal(t, config.StateStoreFile, cfg.GetStateStore())
	require.Equal(t, 2*time.Minute, cfg.GetRefreshWindow())
	require.Equal(t, []string{"*"}, cfg.GetAllowedOrigins())
	require.Equal(t, ":8080", cfg.GetPort())
	require.NotEmpty(t, cfg.GetAPIBaseURL())
}

func TestOverrides(t *testing.T) {
	t.Setenv("QLVS_REFRESH_WINDOW", "45s")
	t.Setenv("QLVS_REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local,")
	t.Setenv("PORT", "9090")
	cfg := config.New()

	require.Equal(t, 45*time.Second, cfg.GetRefreshWindow())
	require.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.GetAllowedOrigins())
	require.Equal(t, ":9090", cfg.GetPort())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QLVS_KEY_NAMESPACE=from-file\nAPP_NAME=from-file\n"), 0o600))
	t.Setenv("QLVS_KEY_NAMESPACE", "")
	t.Setenv("APP_NAME", "from-process")
	os.Unsetenv("QLVS_KEY_NAMESPACE")

	require.NoError(t, config.LoadDotEnv(path))
	cfg := config.New()
	require.Equal(t, "from-file", cfg.GetKeyNamespace())
	require.Equal(t, "from-process", cfg.GetAppName())

	require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestDurations_NonPositiveFallBackToDefault(t *testing.T) {
	t.Setenv("QLVS_KEEPALIVE_INTERVAL", "0s")
	require.Equal(t, 30*time.Second, config.New().GetKeepAliveInterval())

	t.Setenv("QLVS_KEEPALIVE_INTERVAL", "-5s")
	require.Equal(t, 30*time.Second, config.New().GetKeepAliveInterval())

	t.Setenv("QLVS_KEEPALIVE_INTERVAL", "5s")
	require.Equal(t, 5*time.Second, config.New().GetKeepAliveInterval())
}
