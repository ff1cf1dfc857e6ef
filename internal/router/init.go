package router

import (
	"context"

	"github.com/oksasatya/vortex-feed/internal/container"
	handlers "github.com/oksasatya/vortex-feed/internal/interface/http"
	"github.com/oksasatya/vortex-feed/internal/router/modules"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

type HandlerSet struct {
	Session      *handlers.SessionHandler
	Posts        *handlers.PostHandler
	Profile      *handlers.ProfileHandler
	Notification *handlers.NotificationHandler
}

func buildHandlers() HandlerSet {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	client := container.GetClient()

	return HandlerSet{
		Session:      handlers.NewSessionHandler(client, container.GetJWT(), logger, cfg.CookieDomain, cfg.CookieSecure),
		Posts:        handlers.NewPostHandler(logger),
		Profile:      handlers.NewProfileHandler(client, logger),
		Notification: handlers.NewNotificationHandler(container.GetHub(), logger, cfg.CORSOrigins()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	h := buildHandlers()
	client := container.GetClient()
	jwt := container.GetJWT()

	r.Add(modules.NewSessionModule(h.Session, client, jwt))
	r.Add(modules.NewPostModule(h.Posts, client, jwt))
	r.Add(modules.NewProfileModule(h.Profile, client, jwt))
	r.Add(modules.NewNotificationModule(h.Notification, client, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetHub(), dependencyChecks()))
	}
}

// dependencyChecks covers the optional services main managed to set up.
func dependencyChecks() map[string]modules.Check {
	checks := map[string]modules.Check{}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return helpers.PingRedis(ctx, rdb) }
	}
	if es := container.GetES(); es != nil {
		checks["elasticsearch"] = func(ctx context.Context) error { return helpers.PingES(ctx, es) }
	}
	if gcs := container.GetGCS(); gcs != nil {
		bucket := container.GetConfig().GCSBucket
		checks["gcs"] = func(ctx context.Context) error { return helpers.CheckBucket(ctx, gcs, bucket) }
	}
	if pub := container.GetRabbitPub(); pub != nil {
		checks["rabbitmq"] = func(context.Context) error { return pub.Healthy() }
	}
	return checks
}
