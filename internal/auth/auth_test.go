package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/bikeshare/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptCrypt(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		expected int
	}{
		{"min cost", bcrypt.MinCost, bcrypt.MinCost},
		{"custom cost", 8, 8},
		{"zero falls back", 0, bcrypt.DefaultCost},
		{"too high falls back", bcrypt.MaxCost + 1, bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewBcryptCrypt(tt.cost).cost)
		})
	}
}

func TestBcryptCrypt_Encrypt(t *testing.T) {
	crypt := NewBcryptCrypt(bcrypt.MinCost)

	hash, err := crypt.Encrypt(context.Background(), "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "1234", hash)
}

func TestBcryptCrypt_Encrypt_CancelledContext(t *testing.T) {
	crypt := NewBcryptCrypt(bcrypt.MinCost)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := crypt.Encrypt(ctx, "1234")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBcryptCrypt_Compare(t *testing.T) {
	crypt := NewBcryptCrypt(bcrypt.MinCost)
	hash, err := crypt.Encrypt(context.Background(), "1234")
	require.NoError(t, err)

	ok, err := crypt.Compare("1234", hash)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = crypt.Compare("12345", hash)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Not a bcrypt hash at all
	ok, err = crypt.Compare("1234", "1234")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewTokenService_Defaults(t *testing.T) {
	service := NewTokenService("", 0)
	assert.Equal(t, []byte(defaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)
	user := models.NewUser("Jose", "jose@mail.com", "hash")

	token, err := service.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Name, claims.Name)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, err := NewTokenService("one", time.Hour).GenerateToken(models.NewUser("Jose", "jose@mail.com", ""))
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestTokenService_TokenExpiration(t *testing.T) {
	now := time.Now()
	service := NewTokenService("test-secret", time.Hour)
	service.now = func() time.Time { return now }

	token, err := service.GenerateToken(models.NewUser("Jose", "jose@mail.com", ""))
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.Exp)

	now = now.Add(2 * time.Hour)
	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}
