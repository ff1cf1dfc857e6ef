package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/application"
	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
	"github.com/oksasatya/vortex-feed/pkg/response"
	"github.com/oksasatya/vortex-feed/pkg/validation"
)

type SessionHandler struct {
	Client  *application.Client
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewSessionHandler(client *application.Client, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *SessionHandler {
	return &SessionHandler{Client: client, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type sessionView struct {
	Session          *application.Session `json:"session,omitempty"`
	User             *entity.User         `json:"user"`
	ProfileCompleted bool                 `json:"profile_completed"`
	LoginComplete    bool                 `json:"login_complete"`
	FeedLoading      bool                 `json:"feed_loading"`
}

type registerRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Answer      *int   `json:"answer" binding:"required"`
}

func (h *SessionHandler) view(c *gin.Context, s *application.Session) sessionView {
	users := h.Client.Users()
	v := sessionView{
		Session:          s,
		User:             users.User(),
		ProfileCompleted: users.ProfileCompleted(),
		LoginComplete:    users.LoginComplete(c.Request.Context()),
	}
	if s != nil {
		v.FeedLoading = s.Posts.Loading()
	}
	return v
}

// Connect asks the wallet for an address, starts a session and hands the UI a cookie
// bound to it.
func (h *SessionHandler) Connect(c *gin.Context) {
	s, err := h.Client.Connect(c.Request.Context())
	if err != nil {
		writeError(c, err, "wallet connection failed")
		return
	}
	token, exp, err := h.JWT.GenerateAccessToken(s.Address, s.ID)
	if err != nil {
		helpers.LogError(h.Logger, "sign session cookie", err, logrus.Fields{"session_id": s.ID})
		response.Error[any](c, http.StatusInternalServerError, "failed to issue session", nil)
		return
	}
	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, h.view(c, s), "wallet connected", map[string]any{"expires_at": exp})
}

func (h *SessionHandler) Disconnect(c *gin.Context) {
	h.Cookies.Clear(c)
	if err := h.Client.Disconnect(c.Request.Context()); err != nil && !errors.Is(err, application.ErrNotConnected) {
		writeError(c, err, "failed to disconnect")
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"disconnected": true}, "wallet disconnected", nil)
}

func (h *SessionHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, h.view(c, middleware.CurrentSession(c)), "session", nil)
}

// Refresh re-reads the profile from the remote API.
func (h *SessionHandler) Refresh(c *gin.Context) {
	h.Client.Users().RefreshUser(c.Request.Context())
	response.Success(c, http.StatusOK, h.view(c, middleware.CurrentSession(c)), "profile refreshed", nil)
}

func (h *SessionHandler) Challenge(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Client.Profiles().NewChallenge(), "challenge issued", nil)
}

func (h *SessionHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Client.Profiles().Register(c.Request.Context(), req.ChallengeID, *req.Answer); err != nil {
		writeError(c, err, "registration failed")
		return
	}
	response.Success(c, http.StatusCreated, h.view(c, middleware.CurrentSession(c)), "wallet registered", nil)
}
