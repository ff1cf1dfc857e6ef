package repository

import (
	"context"
	"io"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

// Moderator scores text. Implementations never fail: they fall back to entity.NeutralVerdict.
type Moderator interface {
	Verify(ctx context.Context, text string) entity.Verdict
}

// ChainLogger submits a log entry signed by the connected wallet and returns the transaction id.
type ChainLogger interface {
	LogPost(ctx context.Context, e entity.ChainEntry) (string, error)
}

// Wallet is the connected signer.
type Wallet interface {
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
	Address() string
}

// LocalCache is the client-side key/value store that survives restarts.
// It is a best-effort cache, never a source of truth.
type LocalCache interface {
	SetJSON(ctx context.Context, key string, value any) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Notifier delivers transient notifications. Delivery failures are the notifier's problem.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}

// ImageStore uploads post images and returns a public reference.
type ImageStore interface {
	Upload(ctx context.Context, owner string, r io.Reader, filename, contentType string) (string, error)
}

// PostIndex is an optional full-text index over visible posts.
type PostIndex interface {
	Index(ctx context.Context, posts []entity.Post) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}
