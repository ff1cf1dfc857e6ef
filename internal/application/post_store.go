package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

const defaultSyncTimeout = 15 * time.Second

// PostStoreDeps are the collaborators of a PostStore. Index is optional.
type PostStoreDeps struct {
	Remote            repo.PostRemote
	Users             repo.UserRemote
	Notifier          repo.Notifier
	Index             repo.PostIndex
	Actor             Actor
	Logger            *logrus.Logger
	SyncTimeout       time.Duration
	LookupConcurrency int
}

// PostStore holds the session's working set of posts.
//
// Every mutation is applied locally first and then mirrored to the remote API in the
// background. A failed mirror never reverts the local change: the next LoadPosts is the
// correction channel. Soft-deleted posts stay in the collection but are never returned.
type PostStore struct {
	ctx      context.Context // lifetime of the owning session
	remote   repo.PostRemote
	notifier repo.Notifier
	index    repo.PostIndex
	actor    Actor
	logger   *logrus.Logger
	timeout  time.Duration
	profiles *profileLoader

	mu      sync.RWMutex
	posts   []entity.Post // newest first, includes soft-deleted
	loading bool
	lastErr error
	gen     uint64
	closed  bool

	inflight sync.WaitGroup
}

func NewPostStore(ctx context.Context, deps PostStoreDeps) *PostStore {
	logger := deps.Logger
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	timeout := deps.SyncTimeout
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &PostStore{
		ctx:      ctx,
		remote:   deps.Remote,
		notifier: deps.Notifier,
		index:    deps.Index,
		actor:    deps.Actor,
		logger:   logger,
		timeout:  timeout,
		profiles: &profileLoader{users: deps.Users, logger: logger, limit: deps.LookupConcurrency},
	}
}

// LoadPosts replaces the collection with the remote feed. On failure the previous
// collection is kept and the store error is set.
func (s *PostStore) LoadPosts(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	posts, err := s.remote.ListPosts(ctx)
	if err != nil {
		loadErr := fmt.Errorf("%w: %w", ErrLoadFailed, err)
		s.mu.Lock()
		current := gen == s.gen
		if current {
			s.loading = false
			s.lastErr = loadErr
		}
		s.mu.Unlock()
		if !current || s.ctx.Err() != nil {
			return loadErr
		}
		helpers.LogError(s.logger, "failed to load posts", err, nil)
		s.notify(entity.LevelError, "Failed to load posts. Please refresh the page.", "posts.load", "")
		return loadErr
	}

	images := s.profiles.resolve(ctx, distinctAuthors(posts))
	for i := range posts {
		posts[i].Normalize()
		posts[i].Author.ProfileImage = images[posts[i].Author.Address]
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded feed load")
		return nil
	}
	s.posts = posts
	s.loading = false
	s.mu.Unlock()

	s.reindex(visible(posts))
	s.logger.WithField("count", len(posts)).Info("feed loaded")
	return nil
}

// RefreshPosts re-runs LoadPosts.
func (s *PostStore) RefreshPosts(ctx context.Context) error {
	return s.LoadPosts(ctx)
}

// AddPost puts p at the front of the feed and asks the remote API to persist it.
func (s *PostStore) AddPost(p entity.Post) {
	p = p.Clone()
	p.Normalize()

	s.mu.Lock()
	rest := make([]entity.Post, 0, len(s.posts)+1)
	rest = append(rest, p)
	for _, existing := range s.posts {
		if existing.ID != p.ID {
			rest = append(rest, existing)
		}
	}
	s.posts = rest
	s.mu.Unlock()

	s.sync("post.create", p.ID, "Post created but failed to sync with database", func(ctx context.Context) error {
		return s.remote.CreatePost(ctx, p)
	})
	s.reindex([]entity.Post{p})
}

// LikePost adds one like to a visible post.
func (s *PostStore) LikePost(id string) {
	if !s.update(id, func(p *entity.Post) { p.Likes++ }) {
		return
	}
	addr := s.actorAddress()
	s.sync("post.like", id, "", func(ctx context.Context) error {
		return s.remote.LikePost(ctx, id, addr)
	})
}

// UnlikePost removes one like from a visible post, never going below zero.
func (s *PostStore) UnlikePost(id string) {
	if !s.update(id, func(p *entity.Post) {
		if p.Likes > 0 {
			p.Likes--
		}
	}) {
		return
	}
	addr := s.actorAddress()
	s.sync("post.unlike", id, "", func(ctx context.Context) error {
		return s.remote.UnlikePost(ctx, id, addr)
	})
}

// AddComment appends a comment by the current actor to a visible post.
// It reports false when no visible post has that id.
func (s *PostStore) AddComment(id, text string) (entity.Comment, bool) {
	c := entity.Comment{
		ID:        uuid.NewString(),
		Content:   text,
		Timestamp: time.Now().UTC(),
		Author:    entity.Author{Address: s.actorAddress(), DisplayName: s.actorName()},
	}
	if !s.update(id, func(p *entity.Post) {
		p.CommentList = append(p.CommentList, c)
		p.Comments = len(p.CommentList)
	}) {
		return entity.Comment{}, false
	}
	s.sync("post.comment", id, "", func(ctx context.Context) error {
		return s.remote.CommentPost(ctx, id, c)
	})
	return c, true
}

// EditPost replaces content and image of a visible post.
func (s *PostStore) EditPost(id, content, image string) bool {
	var edited entity.Post
	if !s.update(id, func(p *entity.Post) {
		p.Content = content
		p.Image = image
		edited = p.Clone()
	}) {
		return false
	}
	s.sync("post.edit", id, "Post updated but failed to sync with database", func(ctx context.Context) error {
		return s.remote.UpdatePost(ctx, id, content, image)
	})
	s.reindex([]entity.Post{edited})
	return true
}

// SoftDeletePost hides a post. Deleting twice is harmless.
func (s *PostStore) SoftDeletePost(id string) bool {
	found := false
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Deleted = true
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return false
	}

	s.sync("post.delete", id, "Post deleted but failed to sync with database", func(ctx context.Context) error {
		return s.remote.DeletePost(ctx, id)
	})
	if s.index != nil {
		s.sync("post.unindex", id, "", func(ctx context.Context) error {
			return s.index.Remove(ctx, id)
		})
	}
	return true
}

// GetPosts returns the visible feed, newest first.
func (s *PostStore) GetPosts() []entity.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return visible(s.posts)
}

// Post returns a single visible post.
func (s *PostStore) Post(id string) (entity.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id && !p.Deleted {
			return p.Clone(), true
		}
	}
	return entity.Post{}, false
}

// Search finds visible posts matching q. It uses the index when one is configured and
// falls back to a case-insensitive scan of the local feed otherwise.
func (s *PostStore) Search(ctx context.Context, q string, size int) ([]entity.Post, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.Post{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.index == nil {
		return s.scan(q, size), nil
	}
	ids, err := s.index.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.Post(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ClearPosts empties the collection and abandons any load in progress.
func (s *PostStore) ClearPosts() {
	s.mu.Lock()
	s.gen++
	s.posts = nil
	s.loading = false
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *PostStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the error of the last failed load, nil after a successful one.
func (s *PostStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Settle waits for every background sync started so far.
func (s *PostStore) Settle() {
	s.inflight.Wait()
}

// Close stops new background syncs and waits for the running ones.
func (s *PostStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.inflight.Wait()
}

// update applies fn to the visible post with the given id and reports whether one matched.
func (s *PostStore) update(id string, fn func(p *entity.Post)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id && !s.posts[i].Deleted {
			fn(&s.posts[i])
			return true
		}
	}
	return false
}

// sync runs fn in the background under the session context. A failure is logged and,
// when warn is set, reported to the user; local state is left as it is.
func (s *PostStore) sync(action, postID, warn string, fn func(ctx context.Context) error) {
	fields := logrus.Fields{"action": action, "post_id": postID}
	s.mu.Lock()
	if s.closed || s.ctx.Err() != nil {
		s.mu.Unlock()
		s.logger.WithFields(fields).Debug("sync skipped: session closed")
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		err := fn(ctx)
		if err == nil {
			return
		}
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			s.logger.WithFields(fields).Debug("sync abandoned: session closed")
			return
		}
		helpers.LogWarn(s.logger, "remote sync failed", err, fields)
		if warn != "" {
			s.notify(entity.LevelWarning, warn, action, postID)
		}
	}()
}

func (s *PostStore) reindex(posts []entity.Post) {
	if s.index == nil || len(posts) == 0 {
		return
	}
	s.sync("post.index", "", "", func(ctx context.Context) error {
		return s.index.Index(ctx, posts)
	})
}

func (s *PostStore) notify(level entity.Level, msg, action, postID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(context.WithoutCancel(s.ctx), entity.Notification{
		Level:   level,
		Message: msg,
		Action:  action,
		PostID:  postID,
		At:      time.Now().UTC(),
	})
}

func (s *PostStore) actorAddress() string {
	if s.actor == nil {
		return ""
	}
	return s.actor.Address()
}

func (s *PostStore) actorName() string {
	if s.actor == nil {
		return defaultDisplayName
	}
	return s.actor.DisplayName()
}

func (s *PostStore) scan(q string, size int) []entity.Post {
	q = strings.ToLower(q)
	out := []entity.Post{}
	for _, p := range s.GetPosts() {
		if strings.Contains(strings.ToLower(p.Content), q) || strings.Contains(strings.ToLower(p.Author.DisplayName), q) {
			out = append(out, p)
			if len(out) == size {
				break
			}
		}
	}
	return out
}

func visible(posts []entity.Post) []entity.Post {
	out := make([]entity.Post, 0, len(posts))
	for _, p := range posts {
		if !p.Deleted {
			out = append(out, p.Clone())
		}
	}
	return out
}

func distinctAuthors(posts []entity.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		a := p.Author.Address
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
