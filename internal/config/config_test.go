package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CLINIC_TIMEZONE", "")
	t.Setenv("AUTH_RATE_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 10, cfg.AuthRateBurst)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:clinic.db")
	t.Setenv("RESET_DB", "true")
	t.Setenv("AUTH_RATE_LIMIT", "2.5")
	t.Setenv("CLINIC_TIMEZONE", "Europe/Berlin")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:clinic.db", cfg.DBDSN)
	assert.True(t, cfg.ResetDB)
	assert.Equal(t, 2.5, cfg.AuthRateLimit)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestLocation_UnknownZone(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
