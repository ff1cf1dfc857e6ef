package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vortex-feed/internal/application"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
	"github.com/oksasatya/vortex-feed/pkg/response"
)

// Context keys set by Auth.
const (
	SessionKey = "session"
	AddressKey = "address"
)

// SessionSource is the client whose active session the cookie must match.
type SessionSource interface {
	Current() (*application.Session, error)
}

// Auth validates the session cookie and checks that it belongs to the session that is
// active right now; a cookie from an earlier connection is rejected.
func Auth(src SessionSource, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookie)
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing session cookie", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid session cookie", err.Error())
			return
		}

		s, err := src.Current()
		if err != nil || s.ID != claims.SessionID || s.Address != claims.Address {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set(SessionKey, s)
		c.Set(AddressKey, s.Address)
		c.Next()
	}
}

// CurrentSession returns the session stored by Auth.
func CurrentSession(c *gin.Context) *application.Session {
	s, _ := c.Get(SessionKey)
	sess, _ := s.(*application.Session)
	return sess
}
