package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func TestListPosts_AppliesDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/all", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"post_id":"p1","text":"gm","image_url":"a.png","timestamp":"2024-05-01T10:00:00Z",
			 "wallet_address":"W1","display_name":"Alice","trust_score":40,"verified":false,"likes":3,
			 "comment_list":[{"id":"c1","content":"hi","wallet_address":"W2","display_name":"Bob","timestamp":1714557600000}],
			 "solana_logged":true,"solana_tx_hash":"sig","post_hash":"abcd"},
			{"id":"p2","content":"legacy","author":{"address":"W3","displayName":"Carol"},"commentList":[{"id":"c2","content":"yo"}]},
			{"id":"p3"}
		]`))
	})

	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	p1 := posts[0]
	assert.Equal(t, "p1", p1.ID)
	assert.Equal(t, "gm", p1.Content)
	assert.Equal(t, "a.png", p1.Image)
	assert.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(p1.Timestamp))
	assert.Equal(t, entity.Author{Address: "W1", DisplayName: "Alice"}, p1.Author)
	assert.Equal(t, 40, p1.TrustScore)
	assert.False(t, p1.Verified)
	assert.True(t, p1.ChainLogged)
	assert.Equal(t, "sig", p1.ChainTxID)
	require.Len(t, p1.CommentList, 1)
	assert.Equal(t, "Bob", p1.CommentList[0].Author.DisplayName)
	assert.Equal(t, int64(1714557600000), p1.CommentList[0].Timestamp.UnixMilli())

	p2 := posts[1]
	assert.Equal(t, entity.Author{Address: "W3", DisplayName: "Carol"}, p2.Author)
	assert.Equal(t, "legacy", p2.Content)
	require.Len(t, p2.CommentList, 1)
	assert.Equal(t, "Unknown", p2.CommentList[0].Author.Address)

	p3 := posts[2]
	assert.Equal(t, entity.Author{Address: "Unknown", DisplayName: "Anonymous"}, p3.Author)
	assert.Equal(t, 95, p3.TrustScore)
	assert.True(t, p3.Verified)
	assert.NotNil(t, p3.CommentList)
}

func TestListPosts_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.ListPosts(context.Background())
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"posts":`))
		})
		_, err := c.ListPosts(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestGetUser(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"success", http.StatusOK, `{"success":true,"user":{"wallet_address":"W1","display_name":"Alice","profile_completed":true}}`, nil},
		{"success false", http.StatusOK, `{"success":false,"message":"User not found"}`, ErrNotFound},
		{"missing user", http.StatusNotFound, `{"detail":"not found"}`, ErrNotFound},
		{"no wallet", http.StatusOK, `{"success":true,"user":{"display_name":"Alice"}}`, ErrMalformedResponse},
		{"garbage", http.StatusOK, `<html>`, ErrMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/users/me/W1", r.URL.Path)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			u, err := c.GetUser(context.Background(), "W1")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alice", u.DisplayName)
			assert.True(t, u.ProfileCompleted)
		})
	}
}

func TestWrites(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	calls := make(chan call, 8)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls <- call{r.Method, r.URL.Path, body}
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, c.CreatePost(ctx, entity.Post{ID: "p1", Content: "gm", Author: entity.Author{Address: "W1", DisplayName: "Alice"}, Hash: "ff"}))
	got := <-calls
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/posts/create", got.path)
	assert.Equal(t, "p1", got.body["post_id"])
	assert.Equal(t, "gm", got.body["text"])
	assert.Equal(t, float64(0), got.body["action_type"])
	assert.Nil(t, got.body["solana_tx_hash"])

	require.NoError(t, c.UpdatePost(ctx, "p1", "edited", ""))
	got = <-calls
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/api/posts/p1", got.path)
	assert.Equal(t, "edited", got.body["text"])

	require.NoError(t, c.DeletePost(ctx, "p1"))
	got = <-calls
	assert.Equal(t, http.MethodDelete, got.method)

	require.NoError(t, c.LikePost(ctx, "p1", "W2"))
	got = <-calls
	assert.Equal(t, "/api/posts/p1/like", got.path)
	assert.Equal(t, "W2", got.body["wallet_address"])

	require.NoError(t, c.UnlikePost(ctx, "p1", "W2"))
	got = <-calls
	assert.Equal(t, "/api/posts/p1/unlike", got.path)

	require.NoError(t, c.CommentPost(ctx, "p1", entity.Comment{ID: "c1", Content: "hi", Author: entity.Author{Address: "W2", DisplayName: "Bob"}}))
	got = <-calls
	assert.Equal(t, "/api/posts/p1/comment", got.path)
	assert.Equal(t, "Bob", got.body["display_name"])

	require.NoError(t, c.UpdateProfile(ctx, "W1", repo.ProfileUpdate{DisplayName: "Alice"}))
	got = <-calls
	assert.Equal(t, "/api/users/profile/W1", got.path)
	assert.Equal(t, http.MethodPut, got.method)

	require.NoError(t, c.Register(ctx, repo.Registration{WalletAddress: "W1", Username: "user_W1"}))
	got = <-calls
	assert.Equal(t, "/api/users/register", got.path)
	assert.Equal(t, "user_W1", got.body["username"])
}
