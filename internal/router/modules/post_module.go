package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/vortex-feed/internal/interface/http"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// PostModule wires the feed and post routes; all of them need an active session.
type PostModule struct {
	Handler  *handlers.PostHandler
	Sessions middleware.SessionSource
	JWT      *helpers.JWTManager
}

func NewPostModule(h *handlers.PostHandler, src middleware.SessionSource, jwt *helpers.JWTManager) *PostModule {
	return &PostModule{Handler: h, Sessions: src, JWT: jwt}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		auth.GET("/feed", m.Handler.Feed)
		auth.POST("/feed/refresh", m.Handler.Refresh)

		auth.GET("/posts/search", m.Handler.Search)
		auth.POST("/posts/verify", m.Handler.Verify)
		auth.POST("/posts", m.Handler.Create)
		auth.GET("/posts/:id", m.Handler.Get)
		auth.PUT("/posts/:id", m.Handler.Update)
		auth.DELETE("/posts/:id", m.Handler.Delete)
		auth.POST("/posts/:id/like", m.Handler.Like)
		auth.POST("/posts/:id/unlike", m.Handler.Unlike)
		auth.POST("/posts/:id/comments", m.Handler.Comment)
	}
}
