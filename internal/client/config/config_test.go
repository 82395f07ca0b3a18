package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "https://juventudbc.com.mx", c.APIBaseURL)
	assert.Equal(t, "payslips.db", c.DatabasePath)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 1, c.ReceiptType)
	assert.False(t, c.ShareEnabled())
}

func TestLoad_UsesDefaultsWithoutSources(t *testing.T) {
	cfg := load(nil)

	require.NotNil(t, cfg, "load must not return nil")
	assert.Equal(t, "https://juventudbc.com.mx", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoad_Precedence_EnvThenJSONThenFlags(t *testing.T) {
	t.Setenv("PAYSLIPS_API_URL", "http://env:1")
	t.Setenv("PAYSLIPS_DB_PATH", "env.db")
	t.Setenv("PAYSLIPS_LOG_LEVEL", "warn")

	path := writeTempJSON(t, "", "", map[string]any{
		"database_path": "json.db",
		"log_level":     "debug",
	})

	cfg := load([]string{"-c", path, "-l", "error"})

	assert.Equal(t, "http://env:1", cfg.APIBaseURL)
	assert.Equal(t, "json.db", cfg.DatabasePath)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestShareEnabled(t *testing.T) {
	c := &Config{ShareBucket: "receipts"}
	assert.True(t, c.ShareEnabled())
}
