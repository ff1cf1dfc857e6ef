package application

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

type composerFixture struct {
	composer *Composer
	posts    *PostStore
	remote   *mockPostRemote
	chain    *mockChain
	notifier *recordingNotifier
}

func newComposerFixture(t *testing.T, user *entity.User, verdict entity.Verdict, withChain bool) *composerFixture {
	t.Helper()
	session, _, _ := connectedSession(t, user)
	f := &composerFixture{remote: &mockPostRemote{}, chain: &mockChain{}, notifier: &recordingNotifier{}}
	f.remote.On("CreatePost", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.posts = NewPostStore(context.Background(), PostStoreDeps{Remote: f.remote, Actor: session, SyncTimeout: time.Second})

	deps := ComposerDeps{
		Session:   session,
		Posts:     f.posts,
		Moderator: stubModerator{verdict: verdict},
		Notifier:  f.notifier,
		Timeout:   time.Second,
	}
	if withChain {
		deps.Chain = f.chain
	}
	f.composer = NewComposer(context.Background(), deps)
	f.composer.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return f
}

func TestComposer_Compose(t *testing.T) {
	ctx := context.Background()
	good := entity.Verdict{TrustScore: 93, TrustTag: "🟢", Explanation: "fine"}

	t.Run("publishes a moderated, hashed and chain-logged post", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Ålice ☀"), good, true)
		wantHash := helpers.PostHash("gm frens", "", 1_700_000_000_000)
		f.chain.On("LogPost", mock.Anything, entity.ChainEntry{
			DisplayName: "lice",
			Hash:        helpers.HashBytes(wantHash),
			Timestamp:   1_700_000_000_000,
			Action:      entity.ChainCreate,
		}).Return("5sig", nil).Once()

		p, err := f.composer.Compose(ctx, Draft{Content: "  gm frens  "})
		require.NoError(t, err)
		f.posts.Settle()

		assert.Equal(t, "gm frens", p.Content)
		assert.Equal(t, 93, p.TrustScore)
		assert.True(t, p.Verified)
		assert.True(t, p.ChainLogged)
		assert.Equal(t, "5sig", p.ChainTxID)
		assert.Equal(t, wantHash, p.Hash)
		assert.Equal(t, addrAlice, p.Author.Address)
		assert.Equal(t, []string{p.ID}, postIDs(f.posts.GetPosts()))
		assert.Equal(t, []string{"Post created successfully!"}, f.notifier.levels(entity.LevelSuccess))
		f.chain.AssertExpectations(t)
		f.remote.AssertCalled(t, "CreatePost", mock.Anything, mock.Anything)
	})

	t.Run("chain failure still publishes", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.NeutralVerdict(), true)
		f.chain.On("LogPost", mock.Anything, mock.Anything).Return("", errors.New("blockhash not found"))

		p, err := f.composer.Compose(ctx, Draft{Content: "hello"})
		require.NoError(t, err)
		assert.False(t, p.ChainLogged)
		assert.False(t, p.Verified)
		assert.Equal(t, 50, p.TrustScore)
		assert.Len(t, f.posts.GetPosts(), 1)
		assert.Equal(t, []string{"Post created but blockchain logging failed"}, f.notifier.levels(entity.LevelWarning))
	})

	t.Run("images are kept inline without an image store", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), good, true)
		f.chain.On("LogPost", mock.Anything, mock.Anything).Return("sig", nil)

		p, err := f.composer.Compose(ctx, Draft{Content: "pic", Image: []byte{0x89, 0x50}, ImageType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,iVA=", p.Image)
	})

	t.Run("gates", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), good, false)
		_, err := f.composer.Compose(ctx, Draft{Content: "hello"})
		assert.ErrorIs(t, err, ErrWalletNotReady)

		incomplete := completedUser(addrAlice, "Alice")
		incomplete.ProfileCompleted = false
		f = newComposerFixture(t, incomplete, good, true)
		_, err = f.composer.Compose(ctx, Draft{Content: "hello"})
		assert.ErrorIs(t, err, ErrProfileIncomplete)

		f.chain.AssertNotCalled(t, "LogPost", mock.Anything, mock.Anything)
		assert.Empty(t, f.posts.GetPosts())
	})

	t.Run("validation happens before anything is sent", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), good, true)
		cases := map[string]Draft{
			"blank":     {Content: "   "},
			"too long":  {Content: strings.Repeat("x", entity.MaxContentLength+1)},
			"big image": {Content: "ok", Image: make([]byte, entity.MaxImageBytes)},
		}
		for name, d := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := f.composer.Compose(ctx, d)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.NotEmpty(t, verr.Details)
			})
		}
		f.chain.AssertNotCalled(t, "LogPost", mock.Anything, mock.Anything)
		assert.Empty(t, f.posts.GetPosts())
	})
}

func TestComposer_ReviseAndRetract(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.Verdict{TrustScore: 95}, true)
	f.chain.On("LogPost", mock.Anything, mock.MatchedBy(func(e entity.ChainEntry) bool { return e.Action == entity.ChainCreate })).Return("c", nil)
	f.chain.On("LogPost", mock.Anything, mock.MatchedBy(func(e entity.ChainEntry) bool { return e.Action == entity.ChainEdit })).Return("e", nil).Once()
	f.chain.On("LogPost", mock.Anything, mock.MatchedBy(func(e entity.ChainEntry) bool { return e.Action == entity.ChainSoftDelete })).Return("d", nil).Once()
	f.remote.On("UpdatePost", mock.Anything, mock.Anything, "edited", "").Return(nil)
	f.remote.On("DeletePost", mock.Anything, mock.Anything).Return(nil)

	p, err := f.composer.Compose(ctx, Draft{Content: "first"})
	require.NoError(t, err)

	_, err = f.composer.Revise(ctx, p.ID, " ", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	revised, err := f.composer.Revise(ctx, p.ID, "edited", "")
	require.NoError(t, err)
	assert.Equal(t, "edited", revised.Content)

	require.NoError(t, f.composer.Retract(ctx, p.ID))
	assert.ErrorIs(t, f.composer.Retract(ctx, p.ID), ErrPostNotFound)
	_, err = f.composer.Revise(ctx, p.ID, "again", "")
	assert.ErrorIs(t, err, ErrPostNotFound)

	f.composer.Settle()
	f.posts.Settle()
	assert.Empty(t, f.posts.GetPosts())
	f.chain.AssertExpectations(t)
}

func TestComposer_ReviseImage(t *testing.T) {
	ctx := context.Background()
	dataURL := func(n int) string {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, n))
	}

	t.Run("oversized image is rejected before the remote sees it", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.Verdict{TrustScore: 95}, false)
		f.posts.AddPost(entity.Post{ID: "p1", Content: "first", Author: entity.Author{Address: addrAlice}})

		_, err := f.composer.Revise(ctx, "p1", "edited", dataURL(entity.MaxImageBytes))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Details, "image")

		f.posts.Settle()
		p, ok := f.posts.Post("p1")
		require.True(t, ok)
		assert.Equal(t, "first", p.Content)
		f.remote.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed data URL is rejected", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.Verdict{TrustScore: 95}, false)
		f.posts.AddPost(entity.Post{ID: "p1", Content: "first", Author: entity.Author{Address: addrAlice}})

		_, err := f.composer.Revise(ctx, "p1", "edited", "data:image/png;base64,%%%")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		f.posts.Settle()
		f.remote.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("edited image goes through the image store", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.Verdict{TrustScore: 95}, false)
		images := &mockImages{}
		images.On("Upload", mock.Anything, addrAlice, mock.Anything, mock.Anything, "image/png").
			Return("https://cdn.example/posts/a.png", nil).Once()
		f.composer.deps.Images = images
		f.remote.On("UpdatePost", mock.Anything, "p1", "edited", "https://cdn.example/posts/a.png").Return(nil).Once()
		f.posts.AddPost(entity.Post{ID: "p1", Content: "first", Author: entity.Author{Address: addrAlice}})

		p, err := f.composer.Revise(ctx, "p1", "edited", dataURL(16))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/posts/a.png", p.Image)

		f.posts.Settle()
		images.AssertExpectations(t)
		f.remote.AssertExpectations(t)
	})

	t.Run("links are kept as they are", func(t *testing.T) {
		f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.Verdict{TrustScore: 95}, false)
		f.remote.On("UpdatePost", mock.Anything, "p1", "edited", "https://cdn.example/old.png").Return(nil).Once()
		f.posts.AddPost(entity.Post{ID: "p1", Content: "first", Author: entity.Author{Address: addrAlice}})

		p, err := f.composer.Revise(ctx, "p1", "edited", "https://cdn.example/old.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/old.png", p.Image)
		f.posts.Settle()
		f.remote.AssertExpectations(t)
	})
}

func TestComposer_Close(t *testing.T) {
	f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.Verdict{TrustScore: 95}, true)
	f.remote.On("UpdatePost", mock.Anything, "p1", "edited", "").Return(nil)
	f.posts.AddPost(entity.Post{ID: "p1", Content: "first", Author: entity.Author{Address: addrAlice}})

	f.composer.Close()
	_, err := f.composer.Revise(context.Background(), "p1", "edited", "")
	require.NoError(t, err)
	f.composer.Settle()
	f.posts.Settle()
	f.chain.AssertNotCalled(t, "LogPost", mock.Anything, mock.Anything)
}

func TestComposer_Verify(t *testing.T) {
	f := newComposerFixture(t, completedUser(addrAlice, "Alice"), entity.NeutralVerdict(), false)
	v, err := f.composer.Verify(context.Background(), "is this ok?")
	require.NoError(t, err)
	assert.Equal(t, entity.NeutralVerdict(), v)

	_, err = f.composer.Verify(context.Background(), "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestASCIIOnly(t *testing.T) {
	assert.Equal(t, "Jose", asciiOnly("José"))
	assert.Equal(t, "", asciiOnly("日本語"))
	assert.Equal(t, "a b", asciiOnly(" a b\n"))
}
