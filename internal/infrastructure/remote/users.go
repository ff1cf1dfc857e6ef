package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
)

// GetUser returns ErrNotFound for a missing user or a {success:false} answer and
// ErrMalformedResponse for a profile without a wallet address.
func (c *Client) GetUser(ctx context.Context, address string) (*entity.User, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/users/me/"+url.PathEscape(address), nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || len(env.User) == 0 || string(env.User) == "null" {
		return nil, ErrNotFound
	}
	var u entity.User
	if err := json.Unmarshal(env.User, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if u.WalletAddress == "" {
		return nil, fmt.Errorf("%w: user without wallet_address", ErrMalformedResponse)
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, address string, in repo.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/users/profile/"+url.PathEscape(address), in, nil)
}

func (c *Client) Register(ctx context.Context, in repo.Registration) error {
	return c.do(ctx, http.MethodPost, "/api/users/register", in, nil)
}
