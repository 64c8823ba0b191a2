package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/bikeshare/internal/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// keep a stray .env in the working directory out of the tests
	args = append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"))

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_FORMAT", "json")

	out, err := execute(t, "simulate", "--riders", "2", "--bikes", "3", "--rides", "10", "--seed", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "riders=2 bikes=3")
	assert.Contains(t, out, "bikeshare_rents_started_total=")
	assert.Contains(t, out, "bikeshare_bikes_moved_total=")
	assert.Contains(t, out, `"msg":"Simulation completed"`)
}

func TestSimulateCommand_InvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := execute(t, "simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "--email", "jose@mail.com", "--name", "Jose", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewTokenService("cli-secret", time.Hour).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "jose@mail.com", claims.Email)
	assert.Equal(t, "Jose", claims.Name)
}

func TestTokenCommand_RequiresEmail(t *testing.T) {
	_, err := execute(t, "token")
	assert.Error(t, err)
}
