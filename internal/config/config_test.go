package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "s3cr3t")

	cfg, err := LoadServer(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "https://api.razorpay.com", cfg.Razorpay.APIURL)
	assert.Equal(t, "s3cr3t", cfg.Razorpay.KeySecret)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 15*time.Minute, cfg.DB.MaxIdleTime)
	assert.Empty(t, cfg.DB.Addr)
	assert.Equal(t, 20, cfg.RateLimiter.RequestsPerTimeFrame)
	assert.Equal(t, 5*time.Second, cfg.RateLimiter.TimeFrame)
	assert.True(t, cfg.RateLimiter.Enabled)
}

func TestLoadServer_MissingCredentials(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	_, err := LoadServer(noEnvFile(t))
	assert.ErrorContains(t, err, "KeySecret")
}

func TestLoadServer_ProductionNeedsBasicAuth(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_live_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "s3cr3t")
	t.Setenv("ENV", "production")
	t.Setenv("AUTH_BASIC_USER", "")
	t.Setenv("AUTH_BASIC_PASS", "")

	_, err := LoadServer(noEnvFile(t))
	assert.Error(t, err)

	t.Setenv("AUTH_BASIC_USER", "ops")
	t.Setenv("AUTH_BASIC_PASS", "hunter2")
	cfg, err := LoadServer(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
}

func TestLoadServer_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RZP_TEST_ONLY_ADDR=:9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RZP_TEST_ONLY_ADDR") })

	require.NoError(t, loadEnvFiles([]string{path}))
	assert.Equal(t, ":9999", os.Getenv("RZP_TEST_ONLY_ADDR"))
}

func TestLoadClient(t *testing.T) {
	state := filepath.Join(t.TempDir(), "checkout.json")
	t.Setenv("CHECKOUT_API_URL", "http://shop.local:8080")
	t.Setenv("CHECKOUT_STATE_FILE", state)
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "must-not-leak")
	t.Setenv("ENV", "development")
	t.Setenv("CHECKOUT_LOCAL_VERIFY", "true")

	cfg, err := LoadClient(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local:8080", cfg.APIURL)
	assert.Equal(t, state, cfg.StateFile)
	assert.Equal(t, "rzp_test_key", cfg.KeyID)
	assert.True(t, cfg.AllowUntrusted())
	assert.NotContains(t, []string{cfg.APIURL, cfg.KeyID, cfg.StateFile}, "must-not-leak")

	t.Setenv("ENV", "production")
	cfg, err = LoadClient(noEnvFile(t))
	require.NoError(t, err)
	assert.False(t, cfg.AllowUntrusted())
}

func TestLoadClient_InvalidURL(t *testing.T) {
	t.Setenv("CHECKOUT_API_URL", "not a url")
	t.Setenv("ENV", "development")
	_, err := LoadClient(noEnvFile(t))
	assert.Error(t, err)
}
