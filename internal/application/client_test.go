package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

func TestClient_Lifecycle(t *testing.T) {
	ctx := context.Background()
	posts := &mockPostRemote{}
	posts.On("ListPosts", mock.Anything).Return([]entity.Post{{ID: "p1"}, {ID: "p2"}}, nil)
	users := &mockUserRemote{}
	users.On("GetUser", mock.Anything, addrAlice).Return(completedUser(addrAlice, "Alice"), nil)
	wallet := &mockWallet{}
	wallet.On("Connect", mock.Anything).Return(addrAlice, nil)
	wallet.On("Disconnect", mock.Anything).Return(nil)
	cache := newMemCache()

	c := NewClient(ctx, ClientDeps{
		Posts:     posts,
		Users:     users,
		Wallet:    wallet,
		Cache:     cache,
		Moderator: stubModerator{verdict: entity.NeutralVerdict()},
	})

	_, err := c.Current()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, c.Disconnect(ctx), ErrNotConnected)

	s, err := c.Connect(ctx)
	require.NoError(t, err)
	s.Settle()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, addrAlice, s.Address)
	assert.Equal(t, []string{"p1", "p2"}, postIDs(s.Posts.GetPosts()))
	assert.Equal(t, "Alice", c.Users().DisplayName())
	assert.True(t, cache.has(userCacheKey))

	current, err := c.Current()
	require.NoError(t, err)
	assert.Same(t, s, current)

	t.Run("reconnecting replaces the session", func(t *testing.T) {
		next, err := c.Connect(ctx)
		require.NoError(t, err)
		next.Settle()
		assert.NotEqual(t, s.ID, next.ID)
		select {
		case <-s.Done():
		default:
			t.Fatal("previous session still running")
		}
		s = next
	})

	require.NoError(t, c.Disconnect(ctx))
	select {
	case <-s.Done():
	default:
		t.Fatal("session context not canceled")
	}
	assert.Empty(t, s.Posts.GetPosts())
	assert.Nil(t, c.Users().User())
	assert.False(t, cache.has(userCacheKey))
	_, err = c.Current()
	assert.ErrorIs(t, err, ErrNotConnected)
	wallet.AssertNumberOfCalls(t, "Disconnect", 2)
}

func TestClient_ConnectRejected(t *testing.T) {
	wallet := &mockWallet{}
	wallet.On("Connect", mock.Anything).Return("", errors.New("user rejected the request"))
	c := NewClient(context.Background(), ClientDeps{Wallet: wallet, Cache: newMemCache(), Users: &mockUserRemote{}})

	_, err := c.Connect(context.Background())
	assert.Error(t, err)
	_, err = c.Current()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClient_CloseKeepsCachedProfile(t *testing.T) {
	ctx := context.Background()
	posts := &mockPostRemote{}
	posts.On("ListPosts", mock.Anything).Return([]entity.Post{}, nil)
	users := &mockUserRemote{}
	users.On("GetUser", mock.Anything, addrAlice).Return(completedUser(addrAlice, "Alice"), nil)
	wallet := &mockWallet{}
	wallet.On("Connect", mock.Anything).Return(addrAlice, nil)
	cache := newMemCache()

	c := NewClient(ctx, ClientDeps{Posts: posts, Users: users, Wallet: wallet, Cache: cache})
	_, err := c.Connect(ctx)
	require.NoError(t, err)
	c.Close()

	assert.True(t, cache.has(userCacheKey))
	restarted := NewClient(ctx, ClientDeps{Posts: posts, Users: users, Wallet: wallet, Cache: cache})
	require.NotNil(t, restarted.Users().User())
	assert.Equal(t, "Alice", restarted.Users().User().DisplayName)
}
