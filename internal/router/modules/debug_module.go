package modules

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

var publishOnce sync.Once

// Gauges is what the debug module reports besides the runtime defaults.
type Gauges interface {
	Subscribers() int
}

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

type DebugModule struct {
	gauges Gauges
	checks map[string]Check
}

func NewDebugModule(g Gauges, checks map[string]Check) *DebugModule {
	return &DebugModule{gauges: g, checks: checks}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	publishOnce.Do(func() {
		expvar.Publish("notification_subscribers", expvar.Func(func() any {
			return m.gauges.Subscribers()
		}))
		expvar.Publish("dependencies", expvar.Func(func() any {
			return m.health()
		}))
	})
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}

// health runs every check; a healthy service reports "ok", a failing one its error.
func (m *DebugModule) health() map[string]string {
	out := make(map[string]string, len(m.checks))
	for name, check := range m.checks {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		if err := check(ctx); err != nil {
			out[name] = err.Error()
		} else {
			out[name] = "ok"
		}
		cancel()
	}
	return out
}
