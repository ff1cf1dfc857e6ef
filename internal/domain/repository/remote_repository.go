package repository

import (
	"context"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

// PostRemote is the remote post API. Every write is best-effort from the stores' point of view.
type PostRemote interface {
	ListPosts(ctx context.Context) ([]entity.Post, error)
	CreatePost(ctx context.Context, p entity.Post) error
	UpdatePost(ctx context.Context, id, content, image string) error
	DeletePost(ctx context.Context, id string) error
	LikePost(ctx context.Context, id, address string) error
	UnlikePost(ctx context.Context, id, address string) error
	CommentPost(ctx context.Context, id string, c entity.Comment) error
}

// ProfileUpdate is the body of a profile save.
type ProfileUpdate struct {
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Email        string `json:"email,omitempty"`
	Website      string `json:"website,omitempty"`
	Twitter      string `json:"twitter,omitempty"`
	Instagram    string `json:"instagram,omitempty"`
	Location     string `json:"location,omitempty"`
}

// Registration is the body sent once the human-verification challenge passes.
type Registration struct {
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	CreatedAt     string `json:"created_at"`
}

// UserRemote is the remote profile API.
type UserRemote interface {
	GetUser(ctx context.Context, address string) (*entity.User, error)
	UpdateProfile(ctx context.Context, address string, in ProfileUpdate) error
	Register(ctx context.Context, in Registration) error
}
