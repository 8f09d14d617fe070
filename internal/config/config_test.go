package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "excel", cfg.Store.Backend)
	assert.Equal(t, "Visit_Log.xlsx", cfg.Store.LogPath)
	assert.Equal(t, "Master Data New.xlsx", cfg.Store.MasterPath)
	assert.Equal(t, "Photos", cfg.Store.PhotoDir)
	assert.Equal(t, "Pacific/Port_Moresby", cfg.Timezone)
	assert.Equal(t, time.Hour, cfg.Backup.Interval)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Location.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ADMIN_TOKEN_TTL_MIN", "15")
	t.Setenv("BACKUP_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Admin.TokenTTL)
	assert.True(t, cfg.Backup.Enabled)
}
