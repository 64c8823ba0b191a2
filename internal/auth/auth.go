package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/bikeshare/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const defaultSecret = "default-secret-key-change-in-production"

// Crypt protects user passwords and verifies plaintext candidates against
// the protected form.
type Crypt interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Compare(plaintext, protected string) (bool, error)
}

// BcryptCrypt implements Crypt with bcrypt hashes.
type BcryptCrypt struct {
	cost int
}

// NewBcryptCrypt creates a bcrypt Crypt. Costs outside bcrypt's accepted
// range fall back to bcrypt.DefaultCost.
func NewBcryptCrypt(cost int) *BcryptCrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptCrypt{cost: cost}
}

// Encrypt hashes a password using bcrypt
func (c *BcryptCrypt) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Compare checks if a password matches a hash. A mismatch is not an error.
func (c *BcryptCrypt) Compare(plaintext, protected string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(protected), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
}

// TokenService issues session tokens for authenticated users.
type TokenService struct {
	jwtSecret []byte
	tokenExp  time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. An empty secret or a non-positive
// expiry fall back to development defaults.
func NewTokenService(secret string, exp time.Duration) *TokenService {
	if secret == "" {
		secret = defaultSecret
	}
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return &TokenService{
		jwtSecret: []byte(secret),
		tokenExp:  exp,
		now:       time.Now,
	}
}

// GenerateToken generates a JWT token for a user
func (s *TokenService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"name": user.Name,
		"exp":  now.Add(s.tokenExp).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *TokenService) ValidateToken(tokenString string) (*models.Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	email, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	name, _ := claims["name"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		Email: email,
		Name:  name,
		Exp:   int64(exp),
	}, nil
}
