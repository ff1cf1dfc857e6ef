package application

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
)

type mockPostRemote struct {
	mock.Mock
}

func (m *mockPostRemote) ListPosts(ctx context.Context) ([]entity.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]entity.Post)
	return posts, args.Error(1)
}

func (m *mockPostRemote) CreatePost(ctx context.Context, p entity.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPostRemote) UpdatePost(ctx context.Context, id, content, image string) error {
	return m.Called(ctx, id, content, image).Error(0)
}

func (m *mockPostRemote) DeletePost(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPostRemote) LikePost(ctx context.Context, id, address string) error {
	return m.Called(ctx, id, address).Error(0)
}

func (m *mockPostRemote) UnlikePost(ctx context.Context, id, address string) error {
	return m.Called(ctx, id, address).Error(0)
}

func (m *mockPostRemote) CommentPost(ctx context.Context, id string, c entity.Comment) error {
	return m.Called(ctx, id, c).Error(0)
}

type mockUserRemote struct {
	mock.Mock
}

func (m *mockUserRemote) GetUser(ctx context.Context, address string) (*entity.User, error) {
	args := m.Called(ctx, address)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRemote) UpdateProfile(ctx context.Context, address string, in repo.ProfileUpdate) error {
	return m.Called(ctx, address, in).Error(0)
}

func (m *mockUserRemote) Register(ctx context.Context, in repo.Registration) error {
	return m.Called(ctx, in).Error(0)
}

type mockChain struct {
	mock.Mock
}

func (m *mockChain) LogPost(ctx context.Context, e entity.ChainEntry) (string, error) {
	args := m.Called(ctx, e)
	return args.String(0), args.Error(1)
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) Connect(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockWallet) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockWallet) Address() string {
	return m.Called().String(0)
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) Upload(ctx context.Context, owner string, r io.Reader, filename, contentType string) (string, error) {
	args := m.Called(ctx, owner, r, filename, contentType)
	return args.String(0), args.Error(1)
}

type stubModerator struct {
	verdict entity.Verdict
}

func (s stubModerator) Verify(context.Context, string) entity.Verdict { return s.verdict }

type staticActor struct {
	address, name string
}

func (a staticActor) Address() string     { return a.address }
func (a staticActor) DisplayName() string { return a.name }

// memCache keeps encoded values so decoding behaves like a real cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) SetJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *memCache) raw(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg entity.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) all() []entity.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.Notification(nil), n.sent...)
}

func (n *recordingNotifier) levels(level entity.Level) []string {
	var out []string
	for _, msg := range n.all() {
		if msg.Level == level {
			out = append(out, msg.Message)
		}
	}
	return out
}

const (
	addrAlice = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	addrBob   = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

func completedUser(addr, name string) *entity.User {
	return &entity.User{WalletAddress: addr, Username: "user_" + addr[:8], DisplayName: name, ProfileCompleted: true}
}

// connectedSession returns a SessionStore connected as u.
func connectedSession(t *testing.T, u *entity.User) (*SessionStore, *mockUserRemote, *memCache) {
	t.Helper()
	users := &mockUserRemote{}
	users.On("GetUser", mock.Anything, u.WalletAddress).Return(u, nil)
	cache := newMemCache()
	s := NewSessionStore(users, cache, nil)
	require.NotNil(t, s.Connected(context.Background(), u.WalletAddress))
	return s, users, cache
}

func postIDs(posts []entity.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
