package app

import (
	"github.com/gin-gonic/gin"

	"wechat_ai_relay/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 首页：点击计数演示页
	router.StaticFile("/", "./web/index.html")

	// 微信消息推送
	router.POST("/message/post", c.message.Post)

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.GET("/count", c.counter.GetCount)
		api.POST("/count", c.counter.UpdateCount)
		api.GET("/wx_openid", c.message.OpenID)
	}
}
