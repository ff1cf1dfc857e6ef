package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/vortex-feed/internal/interface/http"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// NotificationModule exposes the toast stream of the connected session.
type NotificationModule struct {
	Handler  *handlers.NotificationHandler
	Sessions middleware.SessionSource
	JWT      *helpers.JWTManager
}

func NewNotificationModule(h *handlers.NotificationHandler, src middleware.SessionSource, jwt *helpers.JWTManager) *NotificationModule {
	return &NotificationModule{Handler: h, Sessions: src, JWT: jwt}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	rg.GET("/notifications", middleware.Auth(m.Sessions, m.JWT), m.Handler.Stream)
}
