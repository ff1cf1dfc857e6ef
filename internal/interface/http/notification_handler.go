package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Subscriber hands out live notification streams.
type Subscriber interface {
	Subscribe() (<-chan entity.Notification, func())
}

// NotificationHandler streams toasts to the UI over a websocket.
type NotificationHandler struct {
	Hub      Subscriber
	Logger   *logrus.Logger
	upgrader websocket.Upgrader
}

// NewNotificationHandler accepts upgrades from the listed origins and from clients that
// send no Origin header at all.
func NewNotificationHandler(hub Subscriber, logger *logrus.Logger, origins []string) *NotificationHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &NotificationHandler{
		Hub:    hub,
		Logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Stream ends together with the session it was opened for.
func (h *NotificationHandler) Stream(c *gin.Context) {
	var sessionDone <-chan struct{}
	if s := middleware.CurrentSession(c); s != nil {
		sessionDone = s.Done()
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	notes, cancel := h.Hub.Subscribe()
	defer cancel()

	// the UI never sends anything; reading only notices when it goes away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case n, ok := <-notes:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				h.Logger.WithError(err).Debug("notification stream closed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-sessionDone:
			return
		}
	}
}
