package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/application"
	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
	"github.com/oksasatya/vortex-feed/pkg/response"
	"github.com/oksasatya/vortex-feed/pkg/validation"
)

var errBadImage = errors.New("image must be a base64 data URL")

type PostHandler struct {
	Logger *logrus.Logger
}

func NewPostHandler(logger *logrus.Logger) *PostHandler {
	return &PostHandler{Logger: logger}
}

type createPostRequest struct {
	Content string `json:"content" form:"content"`
	Image   string `json:"image" form:"-"`
}

type updatePostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

type verifyRequest struct {
	Text string `json:"text" binding:"required"`
}

type commentRequest struct {
	Content string `json:"content" binding:"postbody"`
}

// Feed returns the visible posts. While nothing could be loaded the UI gets a 503 with a
// retry hint instead of an empty feed.
func (h *PostHandler) Feed(c *gin.Context) {
	store := middleware.CurrentSession(c).Posts
	posts := store.GetPosts()
	if err := store.Err(); err != nil && len(posts) == 0 {
		_ = c.Error(err)
		response.Error[any](c, http.StatusServiceUnavailable, "Failed to load posts. Please refresh the page.", map[string]any{"retry": "POST /api/feed/refresh"})
		return
	}
	response.Success(c, http.StatusOK, posts, "feed", map[string]any{"count": len(posts), "loading": store.Loading()})
}

func (h *PostHandler) Refresh(c *gin.Context) {
	store := middleware.CurrentSession(c).Posts
	if err := store.RefreshPosts(c.Request.Context()); err != nil {
		writeError(c, err, "failed to refresh feed")
		return
	}
	posts := store.GetPosts()
	response.Success(c, http.StatusOK, posts, "feed refreshed", map[string]any{"count": len(posts)})
}

func (h *PostHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	posts, err := middleware.CurrentSession(c).Posts.Search(c.Request.Context(), q, size)
	if err != nil {
		helpers.LogError(h.Logger, "search failed", err, logrus.Fields{"q": q})
		writeError(c, err, "search failed")
		return
	}
	response.Success(c, http.StatusOK, posts, "search results", map[string]any{"q": q, "count": len(posts)})
}

func (h *PostHandler) Get(c *gin.Context) {
	p, ok := middleware.CurrentSession(c).Posts.Post(c.Param("id"))
	if !ok {
		writeError(c, application.ErrPostNotFound, "")
		return
	}
	response.Success(c, http.StatusOK, p, "post", nil)
}

// Create accepts either JSON (image as a data URL) or a multipart form with an "image" file.
func (h *PostHandler) Create(c *gin.Context) {
	var (
		req   createPostRequest
		draft application.Draft
		err   error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err = c.ShouldBind(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
		draft, err = draftFromForm(c, req.Content)
	} else {
		if err = c.ShouldBindJSON(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
		draft, err = draftFromDataURL(req.Content, req.Image)
	}
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image", map[string]string{"image": err.Error()})
		return
	}

	p, err := middleware.CurrentSession(c).Composer.Compose(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err, "failed to create post")
		return
	}
	response.Success(c, http.StatusCreated, p, "Post created successfully!", nil)
}

// Verify scores text with the moderation service without publishing it.
func (h *PostHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	v, err := middleware.CurrentSession(c).Composer.Verify(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err, "verification failed")
		return
	}
	response.Success(c, http.StatusOK, v, "content verified", nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s := middleware.CurrentSession(c)
	id := c.Param("id")
	if err := authorize(s, id); err != nil {
		writeError(c, err, "")
		return
	}
	p, err := s.Composer.Revise(c.Request.Context(), id, req.Content, req.Image)
	if err != nil {
		writeError(c, err, "failed to update post")
		return
	}
	response.Success(c, http.StatusOK, p, "Post updated successfully!", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	s := middleware.CurrentSession(c)
	id := c.Param("id")
	if err := authorize(s, id); err != nil {
		writeError(c, err, "")
		return
	}
	if err := s.Composer.Retract(c.Request.Context(), id); err != nil {
		writeError(c, err, "failed to delete post")
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"id": id, "deleted": true}, "Post deleted successfully!", nil)
}

func (h *PostHandler) Like(c *gin.Context) {
	h.react(c, (*application.PostStore).LikePost, "post liked")
}

func (h *PostHandler) Unlike(c *gin.Context) {
	h.react(c, (*application.PostStore).UnlikePost, "post unliked")
}

func (h *PostHandler) react(c *gin.Context, fn func(*application.PostStore, string), msg string) {
	store := middleware.CurrentSession(c).Posts
	id := c.Param("id")
	if _, ok := store.Post(id); !ok {
		writeError(c, application.ErrPostNotFound, "")
		return
	}
	fn(store, id)
	p, _ := store.Post(id)
	response.Success(c, http.StatusOK, p, msg, nil)
}

func (h *PostHandler) Comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cm, ok := middleware.CurrentSession(c).Posts.AddComment(c.Param("id"), strings.TrimSpace(req.Content))
	if !ok {
		writeError(c, application.ErrPostNotFound, "")
		return
	}
	response.Success(c, http.StatusCreated, cm, "comment added", nil)
}

// authorize allows changes to a visible post by its author only.
func authorize(s *application.Session, id string) error {
	p, ok := s.Posts.Post(id)
	if !ok {
		return application.ErrPostNotFound
	}
	if !p.IsAuthoredBy(s.Address) {
		return application.ErrNotAuthor
	}
	return nil
}

func draftFromForm(c *gin.Context, content string) (application.Draft, error) {
	d := application.Draft{Content: content}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return d, nil
	}
	if err != nil {
		return d, err
	}
	f, err := fh.Open()
	if err != nil {
		return d, err
	}
	defer f.Close()

	// one byte past the limit is enough for the composer to reject it
	data, err := io.ReadAll(io.LimitReader(f, entity.MaxImageBytes+1))
	if err != nil {
		return d, err
	}
	d.Image = data
	d.ImageName = fh.Filename
	d.ImageType = http.DetectContentType(data)
	return d, nil
}

func draftFromDataURL(content, image string) (application.Draft, error) {
	d := application.Draft{Content: content}
	if image == "" {
		return d, nil
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
	if !ok || !strings.HasPrefix(image, "data:") || !strings.HasSuffix(meta, ";base64") {
		return d, errBadImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return d, errBadImage
	}
	d.Image = data
	d.ImageType = strings.TrimSuffix(meta, ";base64")
	if d.ImageType == "" {
		d.ImageType = http.DetectContentType(data)
	}
	return d, nil
}
