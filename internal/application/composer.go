package application

import (
	"bytes"
	"context"
	"encoding/base64"
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

// verifiedThreshold is the lowest trust score shown with the verified badge.
const verifiedThreshold = 90

// Draft is a post as typed by the user.
type Draft struct {
	Content   string `json:"content" validate:"postbody"`
	Image     []byte `json:"-"`
	ImageName string `json:"-"`
	ImageType string `json:"-"`
}

type revision struct {
	Content string `json:"content" validate:"postbody"`
}

type verifyRequest struct {
	Text string `json:"text" validate:"postbody"`
}

// ComposerDeps are the collaborators of a Composer. Chain is nil when the wallet cannot
// sign; Images is nil when uploads are not configured and images are kept inline.
type ComposerDeps struct {
	Session   *SessionStore
	Posts     *PostStore
	Moderator repo.Moderator
	Chain     repo.ChainLogger
	Images    repo.ImageStore
	Notifier  repo.Notifier
	Logger    *logrus.Logger
	Timeout   time.Duration
}

// Composer turns drafts into posts: it gates, validates, moderates, fingerprints and
// logs them on chain before handing them to the PostStore.
type Composer struct {
	ctx     context.Context
	deps    ComposerDeps
	logger  *logrus.Logger
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewComposer(ctx context.Context, deps ComposerDeps) *Composer {
	logger := deps.Logger
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &Composer{ctx: ctx, deps: deps, logger: logger, timeout: timeout, now: time.Now}
}

// Compose publishes a new post. Moderation and chain logging never block publishing;
// a missing capability or invalid input does, before anything leaves the process.
func (c *Composer) Compose(ctx context.Context, d Draft) (entity.Post, error) {
	user, err := c.gate()
	if err != nil {
		return entity.Post{}, err
	}
	d.Content = strings.TrimSpace(d.Content)
	if err := validate(d); err != nil {
		return entity.Post{}, err
	}
	if len(d.Image) >= entity.MaxImageBytes {
		return entity.Post{}, newValidationError("image", "must be smaller than 1MB")
	}

	verdict := c.deps.Moderator.Verify(ctx, d.Content)

	imageRef, err := c.storeImage(ctx, user.WalletAddress, d)
	if err != nil {
		return entity.Post{}, fmt.Errorf("upload image: %w", err)
	}

	now := c.now().UTC()
	post := entity.Post{
		ID:        uuid.NewString(),
		Content:   d.Content,
		Image:     imageRef,
		Timestamp: now,
		Author: entity.Author{
			Address:      user.WalletAddress,
			DisplayName:  user.DisplayName,
			ProfileImage: user.ProfileImage,
		},
		TrustScore: verdict.TrustScore,
		Verified:   verdict.TrustScore >= verifiedThreshold,
		Hash:       helpers.PostHash(d.Content, imageRef, now.UnixMilli()),
	}

	tx, err := c.logChain(ctx, user.DisplayName, post.Hash, now, entity.ChainCreate)
	if err != nil {
		helpers.LogWarn(c.logger, "chain log failed", err, logrus.Fields{"post_id": post.ID, "action": entity.ChainCreate.String()})
		c.notify(entity.LevelWarning, "Post created but blockchain logging failed", "chain.create", post.ID)
	} else {
		post.ChainLogged = true
		post.ChainTxID = tx
	}

	c.deps.Posts.AddPost(post)
	c.notify(entity.LevelSuccess, "Post created successfully!", "post.create", post.ID)
	c.logger.WithFields(logrus.Fields{"post_id": post.ID, "trust_score": post.TrustScore, "chain_logged": post.ChainLogged}).Info("post composed")

	if stored, ok := c.deps.Posts.Post(post.ID); ok {
		return stored, nil
	}
	return post, nil
}

// Revise replaces content and image of a post and logs the edit on chain in the background.
func (c *Composer) Revise(ctx context.Context, id, content, image string) (entity.Post, error) {
	content = strings.TrimSpace(content)
	if err := validate(revision{Content: content}); err != nil {
		return entity.Post{}, err
	}
	raw, contentType, inline, err := decodeDataURL("image", image)
	if err != nil {
		return entity.Post{}, err
	}
	if _, ok := c.deps.Posts.Post(id); !ok {
		return entity.Post{}, ErrPostNotFound
	}
	if inline {
		image, err = c.storeImage(ctx, c.deps.Session.Address(), Draft{Image: raw, ImageType: contentType})
		if err != nil {
			return entity.Post{}, fmt.Errorf("store image: %w", err)
		}
	}
	if !c.deps.Posts.EditPost(id, content, image) {
		return entity.Post{}, ErrPostNotFound
	}
	hash := helpers.PostHash(content, image, c.now().UnixMilli())
	c.logChainAsync(id, hash, entity.ChainEdit)

	p, _ := c.deps.Posts.Post(id)
	return p, nil
}

// Retract soft-deletes a post and logs the deletion on chain in the background.
func (c *Composer) Retract(ctx context.Context, id string) error {
	p, ok := c.deps.Posts.Post(id)
	if !ok {
		return ErrPostNotFound
	}
	c.deps.Posts.SoftDeletePost(id)

	hash := p.Hash
	if hash == "" {
		hash = helpers.PostHash(p.Content, p.Image, p.Timestamp.UnixMilli())
	}
	c.logChainAsync(id, hash, entity.ChainSoftDelete)
	return nil
}

// Verify scores text without publishing it.
func (c *Composer) Verify(ctx context.Context, text string) (entity.Verdict, error) {
	text = strings.TrimSpace(text)
	if err := validate(verifyRequest{Text: text}); err != nil {
		return entity.Verdict{}, err
	}
	return c.deps.Moderator.Verify(ctx, text), nil
}

// Settle waits for background chain logs.
func (c *Composer) Settle() {
	c.inflight.Wait()
}

// Close stops new chain logs and waits for the running ones.
func (c *Composer) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Composer) gate() (*entity.User, error) {
	if c.deps.Chain == nil || c.deps.Session.Address() == "" {
		return nil, ErrWalletNotReady
	}
	user := c.deps.Session.User()
	if user == nil || !user.ProfileCompleted {
		return nil, ErrProfileIncomplete
	}
	if strings.TrimSpace(user.DisplayName) == "" {
		return nil, ErrProfileIncomplete
	}
	return user, nil
}

// storeImage returns the reference persisted with the post: an uploaded object URL when
// an image store is configured, otherwise an inline data URL.
func (c *Composer) storeImage(ctx context.Context, owner string, d Draft) (string, error) {
	if len(d.Image) == 0 {
		return "", nil
	}
	contentType := d.ImageType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if c.deps.Images == nil {
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(d.Image), nil
	}
	name := d.ImageName
	if name == "" {
		name = uuid.NewString()
	}
	return c.deps.Images.Upload(ctx, owner, bytes.NewReader(d.Image), name, contentType)
}

// decodeDataURL decodes a base64 data URL and enforces the image size limit. inline is
// false for anything that is not a data URL, such as an already uploaded link.
func decodeDataURL(field, ref string) (raw []byte, contentType string, inline bool, err error) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, "", false, nil
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", true, newValidationError(field, "must be a base64 data URL or a link")
	}
	raw, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", true, newValidationError(field, "must be a base64 data URL or a link")
	}
	if len(raw) >= entity.MaxImageBytes {
		return nil, "", true, newValidationError(field, "must be smaller than 1MB")
	}
	return raw, strings.TrimSuffix(meta, ";base64"), true, nil
}

func (c *Composer) logChain(ctx context.Context, displayName, hash string, at time.Time, action entity.ChainAction) (string, error) {
	if c.deps.Chain == nil {
		return "", ErrWalletNotReady
	}
	name := asciiOnly(displayName)
	if name == "" {
		return "", fmt.Errorf("display name %q has no ASCII characters", displayName)
	}
	digest := helpers.HashBytes(hash)
	if digest == nil {
		return "", fmt.Errorf("invalid post hash %q", hash)
	}
	return c.deps.Chain.LogPost(ctx, entity.ChainEntry{
		DisplayName: name,
		Hash:        digest,
		Timestamp:   at.UnixMilli(),
		Action:      action,
	})
}

func (c *Composer) logChainAsync(postID, hash string, action entity.ChainAction) {
	if c.deps.Chain == nil {
		return
	}
	displayName := c.deps.Session.DisplayName()
	at := c.now()
	c.mu.Lock()
	if c.closed || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.inflight.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.inflight.Done()
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		if _, err := c.logChain(ctx, displayName, hash, at, action); err != nil && c.ctx.Err() == nil {
			helpers.LogWarn(c.logger, "chain log failed", err, logrus.Fields{"post_id": postID, "action": action.String()})
		}
	}()
}

func (c *Composer) notify(level entity.Level, msg, action, postID string) {
	if c.deps.Notifier == nil {
		return
	}
	c.deps.Notifier.Notify(context.WithoutCancel(c.ctx), entity.Notification{
		Level:   level,
		Message: msg,
		Action:  action,
		PostID:  postID,
		At:      time.Now().UTC(),
	})
}

// asciiOnly keeps printable ASCII; the on-chain program rejects anything else.
func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
