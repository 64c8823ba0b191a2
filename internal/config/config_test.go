package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5, cfg.Simulation.Riders)
	assert.Equal(t, 3*time.Hour, cfg.Simulation.MaxRideDuration)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SIM_BIKES", "3")
	t.Setenv("JWT_EXPIRY", "90m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3, cfg.Simulation.Bikes)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiry)
}

func TestLoad_EnvFile(t *testing.T) {
	// godotenv does not override variables that are already set, so make
	// sure the one under test starts unset and is cleaned up afterwards.
	t.Setenv("SIM_RIDES", "")
	require.NoError(t, os.Unsetenv("SIM_RIDES"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SIM_RIDES=7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Simulation.Rides)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"bcrypt cost too low", "BCRYPT_COST", "2"},
		{"no riders", "SIM_RIDERS", "0"},
		{"not a duration", "SIM_MAX_RIDE_DURATION", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
