package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

func TestSessionStore_FetchUser(t *testing.T) {
	ctx := context.Background()

	t.Run("installs and caches the profile", func(t *testing.T) {
		alice := completedUser(addrAlice, "Alice")
		s, _, cache := connectedSession(t, alice)

		assert.Equal(t, alice, s.User())
		assert.True(t, s.ProfileCompleted())
		assert.Equal(t, "Alice", s.DisplayName())
		assert.False(t, s.Loading())

		var cached entity.User
		ok, err := cache.GetJSON(ctx, userCacheKey, &cached)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, addrAlice, cached.WalletAddress)
	})

	t.Run("negative response clears user and cache", func(t *testing.T) {
		s, users, cache := connectedSession(t, completedUser(addrAlice, "Alice"))
		users.ExpectedCalls = nil
		users.On("GetUser", mock.Anything, addrAlice).Return(nil, errors.New("user not found"))

		assert.Nil(t, s.RefreshUser(ctx))
		assert.Nil(t, s.User())
		assert.False(t, cache.has(userCacheKey))
		assert.Equal(t, defaultDisplayName, s.DisplayName())
	})

	t.Run("profile for another wallet is rejected", func(t *testing.T) {
		users := &mockUserRemote{}
		users.On("GetUser", mock.Anything, addrAlice).Return(completedUser(addrBob, "Bob"), nil)
		cache := newMemCache()
		s := NewSessionStore(users, cache, nil)

		assert.Nil(t, s.Connected(ctx, addrAlice))
		assert.Nil(t, s.User())
		assert.False(t, cache.has(userCacheKey))
	})

	t.Run("response after disconnect is discarded", func(t *testing.T) {
		release := make(chan struct{})
		users := &mockUserRemote{}
		users.On("GetUser", mock.Anything, addrAlice).
			Run(func(mock.Arguments) { <-release }).
			Return(completedUser(addrAlice, "Alice"), nil)
		cache := newMemCache()
		s := NewSessionStore(users, cache, nil)

		done := make(chan *entity.User, 1)
		go func() { done <- s.Connected(ctx, addrAlice) }()
		require.Eventually(t, s.Loading, time.Second, 5*time.Millisecond)

		s.Disconnected(ctx)
		close(release)
		assert.Nil(t, <-done)
		assert.Nil(t, s.User())
		assert.False(t, cache.has(userCacheKey))
	})

	t.Run("fetch for another wallet does not leave loading set", func(t *testing.T) {
		s, users, _ := connectedSession(t, completedUser(addrAlice, "Alice"))
		users.On("GetUser", mock.Anything, addrBob).Return(completedUser(addrBob, "Bob"), nil)

		assert.Nil(t, s.FetchUser(ctx, addrBob))
		assert.False(t, s.Loading())
		assert.Equal(t, addrAlice, s.User().WalletAddress)
	})
}

func TestSessionStore_Hydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the cached profile", func(t *testing.T) {
		cache := newMemCache()
		require.NoError(t, cache.SetJSON(ctx, userCacheKey, completedUser(addrAlice, "Alice")))
		s := NewSessionStore(&mockUserRemote{}, cache, nil)
		s.Hydrate(ctx)

		require.NotNil(t, s.User())
		assert.Equal(t, "Alice", s.User().DisplayName)
		assert.Empty(t, s.Address())
	})

	t.Run("corrupt entry is dropped", func(t *testing.T) {
		cache := newMemCache()
		cache.raw(userCacheKey, []byte("{not json"))
		s := NewSessionStore(&mockUserRemote{}, cache, nil)
		s.Hydrate(ctx)

		assert.Nil(t, s.User())
		assert.False(t, cache.has(userCacheKey))
	})

	t.Run("connecting another wallet hides the cached profile", func(t *testing.T) {
		cache := newMemCache()
		require.NoError(t, cache.SetJSON(ctx, userCacheKey, completedUser(addrAlice, "Alice")))
		users := &mockUserRemote{}
		users.On("GetUser", mock.Anything, addrBob).Return(nil, errors.New("not found"))
		s := NewSessionStore(users, cache, nil)
		s.Hydrate(ctx)

		s.Connected(ctx, addrBob)
		assert.Nil(t, s.User())
		assert.Equal(t, addrBob, s.Address())
	})
}

func TestSessionStore_SetUserAndDisconnect(t *testing.T) {
	ctx := context.Background()
	s, _, cache := connectedSession(t, completedUser(addrAlice, "Alice"))

	updated := completedUser(addrAlice, "Alice B")
	s.SetUser(ctx, updated)
	updated.DisplayName = "mutated after the fact"
	assert.Equal(t, "Alice B", s.User().DisplayName)

	s.SetUser(ctx, nil)
	assert.Nil(t, s.User())
	assert.False(t, cache.has(userCacheKey))

	s.SetUser(ctx, completedUser(addrAlice, "Alice"))
	s.Disconnected(ctx)
	assert.Nil(t, s.User())
	assert.Empty(t, s.Address())
	assert.False(t, cache.has(userCacheKey))
	assert.Nil(t, s.RefreshUser(ctx))
}

func TestSessionStore_LoginComplete(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(&mockUserRemote{}, newMemCache(), nil)
	assert.False(t, s.LoginComplete(ctx))
	require.NoError(t, s.MarkLoginComplete(ctx))
	assert.True(t, s.LoginComplete(ctx))
}
