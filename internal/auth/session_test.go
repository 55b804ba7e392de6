package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsRoundTrip(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	waiterID := int64(7)
	token, err := sessions.Issue(Identity{
		Role:         RoleWaiter,
		RestaurantID: 3,
		WaiterID:     &waiterID,
		Name:         "Dana",
	})
	require.NoError(t, err)

	id, err := sessions.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, RoleWaiter, id.Role)
	assert.Equal(t, int64(3), id.RestaurantID)
	require.NotNil(t, id.WaiterID)
	assert.Equal(t, int64(7), *id.WaiterID)
	assert.Equal(t, "Dana", id.Name)
}

func TestSessionsAdmin(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	token, err := sessions.Issue(Identity{Role: RoleAdmin, RestaurantID: 3, Name: "ops@example.com"})
	require.NoError(t, err)

	id, err := sessions.Resolve(token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
	assert.Nil(t, id.WaiterID)
}

func TestSessionsRejects(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	t.Run("empty token", func(t *testing.T) {
		_, err := sessions.Resolve("")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := sessions.Resolve("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessions("another-secret", time.Hour)
		token, err := other.Issue(Identity{Role: RoleAdmin, RestaurantID: 1})
		require.NoError(t, err)

		_, err = sessions.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired token", func(t *testing.T) {
		issued := NewSessions("test-secret", time.Hour)
		issued.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := issued.Issue(Identity{Role: RoleAdmin, RestaurantID: 1})
		require.NoError(t, err)

		_, err = sessions.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("waiter token without waiter id", func(t *testing.T) {
		token, err := sessions.Issue(Identity{Role: RoleWaiter, RestaurantID: 1})
		require.NoError(t, err)

		_, err = sessions.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}
