package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/vortex-feed/internal/interface/http"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// SessionModule wires wallet session and registration routes.
// Public: POST /api/session/connect
// Protected: POST /api/session/disconnect, GET /api/session, POST /api/session/refresh,
// GET /api/register/challenge, POST /api/register
type SessionModule struct {
	Handler  *handlers.SessionHandler
	Sessions middleware.SessionSource
	JWT      *helpers.JWTManager
}

func NewSessionModule(h *handlers.SessionHandler, src middleware.SessionSource, jwt *helpers.JWTManager) *SessionModule {
	return &SessionModule{Handler: h, Sessions: src, JWT: jwt}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	rg.POST("/session/connect", m.Handler.Connect)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		auth.POST("/session/disconnect", m.Handler.Disconnect)
		auth.GET("/session", m.Handler.Get)
		auth.POST("/session/refresh", m.Handler.Refresh)
		auth.GET("/register/challenge", m.Handler.Challenge)
		auth.POST("/register", m.Handler.Register)
	}
}
