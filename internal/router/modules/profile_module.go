package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/vortex-feed/internal/interface/http"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

type ProfileModule struct {
	Handler  *handlers.ProfileHandler
	Sessions middleware.SessionSource
	JWT      *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, src middleware.SessionSource, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, Sessions: src, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/profile")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	auth.GET("", m.Handler.Get)
	auth.PUT("", m.Handler.Update)
}
