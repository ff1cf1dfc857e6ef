package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/application"
	"github.com/oksasatya/vortex-feed/pkg/response"
	"github.com/oksasatya/vortex-feed/pkg/validation"
)

type ProfileHandler struct {
	Client *application.Client
	Logger *logrus.Logger
}

func NewProfileHandler(client *application.Client, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Client: client, Logger: logger}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	u := h.Client.Users().User()
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", map[string]any{"profile_completed": u.ProfileCompleted})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req application.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Client.Profiles().SaveProfile(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, u, "Profile updated successfully!", nil)
}
