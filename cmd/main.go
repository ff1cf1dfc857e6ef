package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/config"
	"github.com/oksasatya/vortex-feed/internal/application"
	"github.com/oksasatya/vortex-feed/internal/container"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/cache"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/chain"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/media"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/moderation"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/notify"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/remote"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/search"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/wallet"
	"github.com/oksasatya/vortex-feed/internal/interface/middleware"
	"github.com/oksasatya/vortex-feed/internal/router"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
	"github.com/oksasatya/vortex-feed/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps := application.ClientDeps{
		Logger:            logger,
		SyncTimeout:       cfg.SyncTimeout,
		WalletTimeout:     cfg.WalletTimeout,
		LookupConcurrency: cfg.ProfileLookups,
	}

	// Remote API and moderation
	rc := remote.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	deps.Posts = rc
	deps.Users = rc
	deps.Moderator = moderation.NewClient(cfg.AIBaseURL, cfg.HTTPTimeout, logger)

	// Local cache
	switch cfg.CacheDriver {
	case "memory":
		deps.Cache = cache.NewMemory()
	default:
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		container.SetRedis(rdb)
		deps.Cache = cache.NewRedis(rdb, cfg.CachePrefix)
	}

	// Wallet and on-chain logging
	kp := wallet.NewKeypair(cfg.WalletKeypairPath, logger)
	deps.Wallet = kp
	if cfg.WalletKeypairPath != "" {
		cl, err := chain.NewLogger(cfg.SolanaRPCURL, cfg.SolanaProgramID, kp, logger)
		if err != nil {
			log.Fatalf("failed to init chain logger: %v", err)
		}
		deps.Chain = cl
	} else {
		logger.Warn("WALLET_KEYPAIR not set; posting is disabled")
	}

	// GCS (optional; images stay inline without it)
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
		deps.Images = media.NewGCS(gcsClient, cfg.GCSBucket)
	}

	// Elasticsearch (optional; search scans the local feed without it)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch: %v", err)
		}
		container.SetES(es)
		deps.Index = search.NewElastic(es, cfg.ESPostsIndex, logger)
	}

	// Notifications: log, live UI stream and, when configured, RabbitMQ
	hub := notify.NewHub()
	notifiers := notify.Multi{notify.NewLog(logger), hub}
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotificationQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; notifications stay local", err, logrus.Fields{"queue": cfg.RabbitMQNotificationQueue})
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
			notifiers = append(notifiers, notify.NewRabbit(pub, logger))
		}
	}
	deps.Notifier = notifiers

	client := application.NewClient(ctx, deps)
	defer client.Close()

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL)

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(jwtManager)
	container.SetHub(hub)
	container.SetClient(client)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	// ends the active session and waits for its background syncs
	client.Close()
	stop()
	logger.Info("server exited properly")
}
