package rental

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []ErrorKind{
	ErrUserAlreadyRegistered,
	ErrUserNotFound,
	ErrUserNotAuthenticated,
	ErrBikeAlreadyRegistered,
	ErrBikeNotFound,
	ErrUnavailableBike,
	ErrRentNotFound,
}

func TestErrorKindsDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range allKinds {
		require.NotEqual(t, "Unknown", k.String(), "kind %d has no name", k)
		require.NotEqual(t, "unknown rental error", k.Error(), "kind %s has no message", k)
		require.False(t, seen[k.Error()], "duplicate message for %s", k)
		seen[k.Error()] = true
	}
	assert.Len(t, seen, 7)
}

func TestErrorKind_Messages(t *testing.T) {
	assert.Equal(t, "already registered bike", ErrBikeAlreadyRegistered.Error())
	assert.Equal(t, "user not authenticated", ErrUserNotAuthenticated.Error())
	assert.Equal(t, "RentNotFound", ErrRentNotFound.String())
	assert.Equal(t, "Unknown", ErrorKind(0).String())
	assert.Equal(t, "unknown rental error", ErrorKind(99).Error())
}

func TestErrorKind_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("returning bike: %w", ErrRentNotFound)

	assert.ErrorIs(t, err, ErrRentNotFound)
	assert.NotErrorIs(t, err, ErrBikeNotFound)

	var kind ErrorKind
	require.True(t, errors.As(err, &kind))
	assert.Equal(t, ErrRentNotFound, kind)
}
