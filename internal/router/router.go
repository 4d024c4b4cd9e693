package router

import (
	"github.com/gin-gonic/gin"
	"github.com/singnet/snet-marketplace-service-sub002/internal/chain"
	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/handler"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, chainManager *chain.Manager, cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "marketplace-event-sync",
		})
	})

	// 静态资源
	if cfg.Storage.AssetDir != "" {
		r.Static("/assets", cfg.Storage.AssetDir)
	}

	// API版本组
	v1 := r.Group("/api/v1")
	{
		statusHandler := handler.NewStatusHandler(db, chainManager)
		v1.GET("/status", statusHandler.GetStatus)
		v1.GET("/events/:family", statusHandler.GetEvents)

		orgHandler := handler.NewOrgHandler(db)
		orgs := v1.Group("/organizations")
		{
			orgs.GET("", orgHandler.GetOrganizations)
			orgs.GET("/:org_id", orgHandler.GetOrganization)
			orgs.PUT("/:org_id/curation", orgHandler.SetCurated)
		}

		serviceHandler := handler.NewServiceHandler(db)
		services := v1.Group("/services")
		{
			services.GET("", serviceHandler.GetServices)
			services.GET("/:org_id/:service_id", serviceHandler.GetService)
			services.PUT("/:org_id/:service_id/curation", serviceHandler.SetCurated)
		}

		channelHandler := handler.NewChannelHandler(db)
		channels := v1.Group("/channels")
		{
			channels.GET("", channelHandler.GetChannels)
			channels.GET("/:channel_id", channelHandler.GetChannel)
			channels.PUT("/:channel_id/consumed-balance", channelHandler.UpdateConsumedBalance)
		}

		subscriptionHandler := handler.NewSubscriptionHandler(db)
		subscriptions := v1.Group("/subscriptions")
		{
			subscriptions.POST("", subscriptionHandler.CreateSubscription)
			subscriptions.GET("", subscriptionHandler.GetSubscriptions)
			subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
