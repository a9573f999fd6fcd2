package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"maily/backend/internal/auth/token"
	"maily/backend/internal/cache"
	"maily/backend/internal/config"
	"maily/backend/internal/domain"
	"maily/backend/internal/health"
	"maily/backend/internal/logger"
	"maily/backend/internal/middleware"
	"maily/backend/internal/monitoring"
	"maily/backend/internal/service"
	"maily/backend/internal/storage/hybrid"
	"maily/backend/internal/storage/memory"
	"maily/backend/internal/storage/postgres"
	httptransport "maily/backend/internal/transport/http"
)

const version = "0.3.0"

// main 启动订阅管理 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.FromConfig(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting maily server",
		zap.String("version", version),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	store, err := initializeStorage(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	// 初始化监控系统
	metrics := monitoring.NewMetrics()
	collector := monitoring.NewCollector(store, metrics, log)
	healthChecker := health.NewHealthChecker(store, log)
	monitor := middleware.NewMonitoringMiddleware(metrics, log)

	log.Info("monitoring system initialized")

	// 初始化服务层
	subscriptionService := service.NewSubscriptionService(store, log, metrics)
	groupService := service.NewGroupService(store, subscriptionService)
	sequenceService := service.NewSequenceService(store, subscriptionService)
	mailingService := service.NewMailingService(store)
	subscriberService := service.NewSubscriberService(store)

	tokenManager := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenExpiry)
	log.Info("unsubscribe token configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("expiry", cfg.JWT.TokenExpiry),
	)

	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		monitor.RateLimitBlocked("unsubscribe"),
	)

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:              cfg,
		GroupService:        groupService,
		SequenceService:     sequenceService,
		MailingService:      mailingService,
		SubscriberService:   subscriberService,
		SubscriptionService: subscriptionService,
		TokenManager:        tokenManager,
		HealthChecker:       healthChecker,
		Metrics:             metrics,
		RateLimiter:         rateLimiter,
		Logger:              log,
	})

	httpAddr := cfg.Server.Addr()
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 指标采集 goroutine
	group.Go(func() error {
		log.Info("starting metrics collector", zap.Duration("interval", 30*time.Second))
		collector.Start(groupCtx, 30*time.Second)
		return nil
	})

	// 限流器清理 goroutine
	group.Go(func() error {
		rateLimiter.StartCleanup(groupCtx, 10*time.Minute)
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		if err := store.Close(); err != nil {
			log.Warn("storage close warning", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// initializeStorage 根据配置选择存储实现
//
// 未配置数据库类型时使用内存存储；启用 Redis 或进程内缓存时在 SQL 存储前加一层缓存。
func initializeStorage(cfg *config.Config, log *zap.Logger) (domain.Store, error) {
	if cfg.Database.Type == "" {
		log.Info("using memory storage (development mode)")
		return memory.NewStore(), nil
	}

	pool := postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	if cfg.Redis.Enabled {
		store, err := hybrid.NewStoreWithType(
			cfg.Database.Type,
			cfg.Database.DSN,
			pool,
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.CacheTTL,
		)
		if err != nil {
			return nil, fmt.Errorf("init hybrid storage: %w", err)
		}
		log.Info("using hybrid storage",
			zap.String("type", cfg.Database.Type),
			zap.String("redis", cfg.Redis.Address),
			zap.Duration("cache_ttl", cfg.Redis.CacheTTL),
		)
		return store, nil
	}

	store, err := postgres.Open(cfg.Database.Type, cfg.Database.DSN, pool)
	if err != nil {
		return nil, fmt.Errorf("init database storage: %w", err)
	}
	if cfg.Cache.Local {
		log.Info("using database storage with local cache",
			zap.String("type", cfg.Database.Type),
			zap.Int("max_entries", cfg.Cache.MaxEntries),
			zap.Duration("cache_ttl", cfg.Cache.TTL),
		)
		return hybrid.NewStore(store, cache.NewLocalCache(cfg.Cache.MaxEntries, cfg.Cache.TTL), cfg.Cache.TTL), nil
	}

	log.Info("using database storage",
		zap.String("type", cfg.Database.Type),
		zap.Int("max_open_conns", pool.MaxOpenConns),
	)
	return store, nil
}
