package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

func (c *Client) ListPosts(ctx context.Context) ([]entity.Post, error) {
	var records []postRecord
	if err := c.do(ctx, http.MethodGet, "/api/posts/all", nil, &records); err != nil {
		return nil, err
	}
	posts := make([]entity.Post, 0, len(records))
	for _, r := range records {
		posts = append(posts, r.toEntity())
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, p entity.Post) error {
	return c.do(ctx, http.MethodPost, "/api/posts/create", newCreateRecord(p), nil)
}

func (c *Client) UpdatePost(ctx context.Context, id, content, image string) error {
	body := map[string]string{"text": content, "image_url": image}
	return c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), body, nil)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) LikePost(ctx context.Context, id, address string) error {
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(id)+"/like", map[string]string{"wallet_address": address}, nil)
}

func (c *Client) UnlikePost(ctx context.Context, id, address string) error {
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(id)+"/unlike", map[string]string{"wallet_address": address}, nil)
}

func (c *Client) CommentPost(ctx context.Context, id string, cm entity.Comment) error {
	body := map[string]string{
		"comment_id":     cm.ID,
		"content":        cm.Content,
		"wallet_address": cm.Author.Address,
		"display_name":   cm.Author.DisplayName,
	}
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(id)+"/comment", body, nil)
}
