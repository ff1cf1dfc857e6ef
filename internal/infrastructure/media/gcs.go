package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var ErrUnsupportedType = errors.New("media: unsupported image type")

// GCS stores post and avatar images in a bucket and returns their public URL.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

func (g *GCS) Upload(ctx context.Context, owner string, r io.Reader, _ string, contentType string) (string, error) {
	objectPath, err := ObjectPath(owner, contentType)
	if err != nil {
		return "", err
	}
	return helpers.UploadObject(ctx, g.client, g.bucket, objectPath, contentType, r)
}

// ObjectPath places an upload under its owner's wallet address with a fresh name. The
// extension follows the content type; the client's filename is not trusted.
func ObjectPath(owner, contentType string) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedType
	}
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join("posts", owner, uuid.NewString()+ext), nil
}
