package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gathergrove/internal/cache"
	gathergroveclient "gathergrove/internal/client/gathergrove"
	"gathergrove/internal/config"
	cronrunner "gathergrove/internal/cron"
	"gathergrove/internal/feed"
	"gathergrove/internal/handler"
	"gathergrove/internal/logger"
	"gathergrove/internal/models"
	"gathergrove/internal/rsvp"
	"gathergrove/internal/service"
	"gathergrove/internal/threads"
)

func main() {
	cfgPath := os.Getenv("GG_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("GG_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	kv, cleanup, err := openCache(cfg.Cache)
	if err != nil {
		logger.Fatal("cache open failed", zap.Error(err))
	}
	defer cleanup()
	logger.Info("cache ready", zap.String("backend", cfg.Cache.Backend))

	apiHTTP := &http.Client{Timeout: cfg.API.Timeout}
	apiClient := gathergroveclient.NewClient(apiHTTP, cfg.API.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rsvpStore := rsvp.NewStore(ctx, apiClient, kv, cfg.Rsvp, logger)
	rsvpStore.WarmStart(ctx)

	hydrator := &rsvp.Hydrator{
		Store:     rsvpStore,
		Logger:    logger,
		Workers:   cfg.Hydration.Workers,
		MaxEvents: cfg.Hydration.MaxEvents,
	}

	feedSvc := &service.FeedService{
		Source:   apiClient,
		Cache:    kv,
		Rsvps:    rsvpStore,
		Hydrator: hydrator,
		Classifier: feed.Classifier{
			HappeningWindow: cfg.Feed.HappeningWindow,
			FutureGrace:     cfg.Feed.FutureGrace,
		},
		Logger: logger,
	}
	feedSvc.SetViewer(viewerFromEnv())
	feedSvc.WarmStart(ctx)

	threadStore := threads.NewStore(kv, logger)
	threadStore.WarmStart(ctx)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{Cache: kv}
	healthHandler.Register(engine)
	feedHandler := &handler.FeedHandler{Feed: feedSvc, Rsvps: rsvpStore}
	feedHandler.Register(engine)
	rsvpHandler := &handler.RsvpHandler{Feed: feedSvc, Rsvps: rsvpStore}
	rsvpHandler.Register(engine)
	threadsHandler := &handler.ThreadsHandler{Feed: feedSvc, Threads: threadStore}
	threadsHandler.Register(engine)

	cronRunner := cronrunner.New(logger, ctx)
	refreshSpec := "@every " + cfg.Feed.RefreshInterval.String()
	_, err = cronRunner.Add(refreshSpec, func(ctx context.Context) {
		if err := feedSvc.Refresh(ctx); err != nil {
			logger.Warn("scheduled feed refresh failed", zap.Error(err))
			return
		}
		logger.Info("feed refreshed", zap.Int("events", len(feedSvc.Events())))
	})
	if err != nil {
		logger.Warn("cron register feed refresh failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	// Initial pass before serving so the first request sees fresh data;
	// a failure here just means starting from the cached list.
	if err := feedSvc.Refresh(ctx); err != nil {
		logger.Warn("initial feed refresh failed (continuing from cache)", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func openCache(cfg config.CacheConfig) (cache.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "redis":
		store := cache.NewRedisStore(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return store, func() { _ = store.Client.Close() }, nil
	case "sqlite":
		store, err := cache.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return cache.NewMemoryStore(), func() {}, nil
	}
}

// viewerFromEnv reads the session identity handed over by the auth layer.
// Empty means anonymous, which fails open to the public feed.
func viewerFromEnv() *models.Viewer {
	id := strings.TrimSpace(os.Getenv("GG_VIEWER_ID"))
	label := strings.TrimSpace(os.Getenv("GG_VIEWER_LABEL"))
	if id == "" && label == "" {
		return nil
	}
	return &models.Viewer{ID: id, Label: label}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
