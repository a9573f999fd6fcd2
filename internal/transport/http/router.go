package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maily/backend/internal/auth/token"
	"maily/backend/internal/config"
	"maily/backend/internal/health"
	"maily/backend/internal/middleware"
	"maily/backend/internal/monitoring"
	"maily/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config              *config.Config
	GroupService        *service.GroupService
	SequenceService     *service.SequenceService
	MailingService      *service.MailingService
	SubscriberService   *service.SubscriberService
	SubscriptionService *service.SubscriptionService
	TokenManager        *token.Manager
	HealthChecker       *health.HealthChecker
	Metrics             *monitoring.Metrics
	RateLimiter         *middleware.RateLimiter // 公开退订接口的限流器
	Logger              *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	monitor := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)

	router.Use(monitor.PanicRecovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(monitor.HTTPMetrics())
	router.Use(middleware.BodySizeLimit(middleware.SmallBodyLimit))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	handler := &Handler{
		groups:        deps.GroupService,
		sequences:     deps.SequenceService,
		mailings:      deps.MailingService,
		subscribers:   deps.SubscriberService,
		subscriptions: deps.SubscriptionService,
		tokens:        deps.TokenManager,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
	}

	// 健康检查与指标
	router.GET("/health", func(c *gin.Context) {
		results := deps.HealthChecker.CheckHealth()
		if !deps.HealthChecker.Healthy() {
			c.JSON(http.StatusServiceUnavailable, Response{Code: http.StatusServiceUnavailable, Msg: "不健康", Data: results})
			return
		}
		Success(c, results)
	})
	router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveHandler()))
	router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyHandler()))
	router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))

	v1 := router.Group("/v1")
	{
		// 公开接口：一键退订
		v1.POST("/unsubscribe", deps.RateLimiter.Middleware(), handler.unsubscribe)

		// 管理接口
		admin := v1.Group("")
		admin.Use(middleware.AdminAPIKey(deps.Config.Admin.APIKey, deps.Logger))
		admin.Use(middleware.ValidateContentType("application/json"))

		groupRoutes := admin.Group("/groups")
		{
			groupRoutes.POST("", handler.createGroup)
			groupRoutes.GET("", handler.listGroups)
			groupRoutes.GET("/:name", handler.getGroup)
			groupRoutes.PATCH("/:name", handler.updateGroup)
			groupRoutes.GET("/:name/aggregates", handler.listGroupAggregates)
			groupRoutes.GET("/:name/aggregates/:entityId", handler.getAggregate)
			groupRoutes.POST("/:name/aggregates/:entityId/activate", handler.activateAggregate)
			groupRoutes.POST("/:name/aggregates/:entityId/deactivate", handler.deactivateAggregate)
		}

		sequenceRoutes := admin.Group("/sequences")
		{
			sequenceRoutes.POST("", handler.createSequence)
			sequenceRoutes.GET("", handler.listSequences)
			sequenceRoutes.GET("/:name", handler.getSequence)
			sequenceRoutes.PATCH("/:name", handler.updateSequence)
			sequenceRoutes.GET("/:name/subscriptions/:entityId", handler.getSubscription)
			sequenceRoutes.POST("/:name/subscriptions/:entityId/activate", handler.activateSubscription)
			sequenceRoutes.POST("/:name/subscriptions/:entityId/deactivate", handler.deactivateSubscription)
			sequenceRoutes.POST("/:name/subscriptions/:entityId/token", handler.issueToken)
		}

		mailingRoutes := admin.Group("/mailings")
		{
			mailingRoutes.POST("", handler.createMailing)
			mailingRoutes.GET("/:name", handler.getMailing)
		}

		subscriberRoutes := admin.Group("/subscribers")
		{
			subscriberRoutes.POST("", handler.createSubscriber)
			subscriberRoutes.GET("/:id", handler.getSubscriber)
			subscriberRoutes.GET("/:id/subscriptions", handler.listSubscriberSubscriptions)
		}
	}

	return router
}
