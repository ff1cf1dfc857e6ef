package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// ClientDeps wires a Client. Chain, Images and Index are optional.
type ClientDeps struct {
	Posts     repo.PostRemote
	Users     repo.UserRemote
	Wallet    repo.Wallet
	Cache     repo.LocalCache
	Notifier  repo.Notifier
	Moderator repo.Moderator
	Chain     repo.ChainLogger
	Images    repo.ImageStore
	Index     repo.PostIndex
	Logger    *logrus.Logger

	SyncTimeout       time.Duration
	WalletTimeout     time.Duration
	LookupConcurrency int
}

// Session is one wallet connection. Everything it starts stops when it ends.
type Session struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	StartedAt time.Time `json:"started_at"`

	Posts    *PostStore `json:"-"`
	Composer *Composer  `json:"-"`

	ctx     context.Context
	cancel  context.CancelFunc
	loading sync.WaitGroup
}

// Settle waits for the session's initial feed load and every background sync.
func (s *Session) Settle() {
	s.loading.Wait()
	s.Posts.Settle()
	s.Composer.Settle()
}

// close refuses new background work and waits for what is running.
func (s *Session) close() {
	s.loading.Wait()
	s.Posts.Close()
	s.Composer.Close()
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Client owns the session store and at most one active Session.
type Client struct {
	ctx      context.Context
	deps     ClientDeps
	logger   *logrus.Logger
	users    *SessionStore
	profiles *ProfileService

	mu      sync.Mutex
	current *Session
}

// NewClient restores the last known profile from the local cache. ctx bounds every
// session the client will start.
func NewClient(ctx context.Context, deps ClientDeps) *Client {
	logger := deps.Logger
	if logger == nil {
		logger = helpers.NewDiscardLogger()
		deps.Logger = logger
	}
	if deps.WalletTimeout <= 0 {
		deps.WalletTimeout = 30 * time.Second
	}
	users := NewSessionStore(deps.Users, deps.Cache, logger)
	users.Hydrate(ctx)
	return &Client{
		ctx:      ctx,
		deps:     deps,
		logger:   logger,
		users:    users,
		profiles: NewProfileService(deps.Users, users, deps.Images, deps.Notifier, logger),
	}
}

// Connect asks the wallet for an address and starts a session for it. A running session
// is ended first.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	if err := c.Disconnect(ctx); err != nil && !errors.Is(err, ErrNotConnected) {
		return nil, err
	}

	wctx, cancel := context.WithTimeout(ctx, c.deps.WalletTimeout)
	addr, err := c.deps.Wallet.Connect(wctx)
	cancel()
	if err != nil {
		helpers.LogWarn(c.logger, "wallet connect failed", err, nil)
		return nil, fmt.Errorf("connect wallet: %w", err)
	}

	sctx, stop := context.WithCancel(c.ctx)
	s := &Session{
		ID:        uuid.NewString(),
		Address:   addr,
		StartedAt: time.Now().UTC(),
		ctx:       sctx,
		cancel:    stop,
	}
	s.Posts = NewPostStore(sctx, PostStoreDeps{
		Remote:            c.deps.Posts,
		Users:             c.deps.Users,
		Notifier:          c.deps.Notifier,
		Index:             c.deps.Index,
		Actor:             c.users,
		Logger:            c.logger,
		SyncTimeout:       c.deps.SyncTimeout,
		LookupConcurrency: c.deps.LookupConcurrency,
	})
	s.Composer = NewComposer(sctx, ComposerDeps{
		Session:   c.users,
		Posts:     s.Posts,
		Moderator: c.deps.Moderator,
		Chain:     c.deps.Chain,
		Images:    c.deps.Images,
		Notifier:  c.deps.Notifier,
		Logger:    c.logger,
		Timeout:   c.deps.SyncTimeout,
	})

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	c.users.Connected(ctx, addr)

	s.loading.Add(1)
	go func() {
		defer s.loading.Done()
		_ = s.Posts.LoadPosts(sctx)
	}()

	c.logger.WithFields(logrus.Fields{"session_id": s.ID, "address": addr}).Info("session started")
	return s, nil
}

// Disconnect ends the active session: pending work is canceled, the wallet released and
// the user, its cached copy and the feed are cleared.
func (c *Client) Disconnect(ctx context.Context) error {
	s := c.detach()
	if s == nil {
		return ErrNotConnected
	}
	s.cancel()
	s.Posts.ClearPosts()
	if err := c.deps.Wallet.Disconnect(ctx); err != nil {
		helpers.LogWarn(c.logger, "wallet disconnect failed", err, logrus.Fields{"session_id": s.ID})
	}
	c.users.Disconnected(ctx)
	s.close()
	c.logger.WithField("session_id", s.ID).Info("session ended")
	return nil
}

// Close stops the active session without forgetting the cached profile, so the next
// start can show it straight away.
func (c *Client) Close() {
	if s := c.detach(); s != nil {
		s.cancel()
		s.close()
	}
}

// Current returns the active session.
func (c *Client) Current() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNotConnected
	}
	return c.current, nil
}

func (c *Client) Users() *SessionStore      { return c.users }
func (c *Client) Profiles() *ProfileService { return c.profiles }

func (c *Client) detach() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.current
	c.current = nil
	return s
}
