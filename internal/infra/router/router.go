/*
 * @Description: 路由注册
 * @Author: 林远
 * @Date: 2025-10-12 19:45:18
 * @LastEditTime: 2026-07-02 21:40:51
 * @LastEditors: 林远
 */
// folio-app/internal/infra/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkfable/folio-app/internal/app/middleware"
	article_handler "github.com/linkfable/folio-app/pkg/handler/article"
	auth_handler "github.com/linkfable/folio-app/pkg/handler/auth"
	comment_handler "github.com/linkfable/folio-app/pkg/handler/comment"
	rss_handler "github.com/linkfable/folio-app/pkg/handler/rss"
	setting_handler "github.com/linkfable/folio-app/pkg/handler/setting"
	subscriber_handler "github.com/linkfable/folio-app/pkg/handler/subscriber"
	"github.com/linkfable/folio-app/pkg/response"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")

		c.Next()
	})
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler       *auth_handler.AuthHandler
	articleHandler    *article_handler.Handler
	commentHandler    *comment_handler.Handler
	subscriberHandler *subscriber_handler.Handler
	settingHandler    *setting_handler.SettingHandler
	rssHandler        *rss_handler.Handler
	mw                *middleware.Middleware
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.AuthHandler,
	articleHandler *article_handler.Handler,
	commentHandler *comment_handler.Handler,
	subscriberHandler *subscriber_handler.Handler,
	settingHandler *setting_handler.SettingHandler,
	rssHandler *rss_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		authHandler:       authHandler,
		articleHandler:    articleHandler,
		commentHandler:    commentHandler,
		subscriberHandler: subscriberHandler,
		settingHandler:    settingHandler,
		rssHandler:        rssHandler,
		mw:                mw,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
// 这是在 app.go 中将被调用的唯一入口点。
func (r *Router) Setup(engine *gin.Engine) {
	// 创建 /api 分组
	apiGroup := engine.Group("/api")
	// 应用全局反缓存中间件
	apiGroup.Use(NoCacheMiddleware())

	// 注册各个模块的路由
	r.registerAuthRoutes(apiGroup)
	r.registerArticleRoutes(apiGroup)
	r.registerCommentRoutes(apiGroup)
	r.registerSubscriptionRoutes(apiGroup)
	r.registerSettingRoutes(apiGroup)
	r.registerRSSRoutes(apiGroup)

	// RSS 别名直接注册到根路径，不使用 /api 前缀
	// 阅读器按惯例探测这几个地址
	engine.GET("/rss.xml", r.rssHandler.GetRSSFeed)
	engine.GET("/feed.xml", r.rssHandler.GetRSSFeed)
	engine.GET("/atom.xml", r.rssHandler.GetRSSFeed)

	// 未匹配的路由统一返回 JSON 404
	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.CodeNotFound, "接口不存在")
	})
}

// registerAuthRoutes 注册认证相关的路由
func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.RefreshToken)
	}

	// 获取当前用户信息需要登录，但不要求管理员
	authed := api.Group("/auth").Use(r.mw.JWTAuth())
	{
		authed.GET("/me", r.authHandler.Me)
	}
}

// registerArticleRoutes 注册文章相关的路由
func (r *Router) registerArticleRoutes(api *gin.RouterGroup) {
	// --- 前台公开接口 ---
	blogsPublic := api.Group("/blogs")
	{
		blogsPublic.GET("", r.articleHandler.ListPublic)
		// 注意：把带参数的路由放在最后，避免路由冲突
		blogsPublic.GET("/:blogId", r.articleHandler.GetPublic)
	}

	// --- 后台管理接口，需要认证和管理员权限 ---
	blogsAdmin := api.Group("/admin/blogs").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		blogsAdmin.GET("", r.articleHandler.List)
		blogsAdmin.POST("", r.articleHandler.Create)
		blogsAdmin.GET("/:blogId", r.articleHandler.Get)
		blogsAdmin.PUT("/:blogId", r.articleHandler.Update)
		blogsAdmin.DELETE("/:blogId", r.articleHandler.Delete)

		// 发布文章: POST /api/admin/blogs/:blogId/publish
		blogsAdmin.POST("/:blogId/publish", r.articleHandler.Publish)
	}
}

// registerCommentRoutes 注册评论相关的路由
func (r *Router) registerCommentRoutes(api *gin.RouterGroup) {
	// 公开的评论接口
	commentsPublic := api.Group("/comments/blog")
	{
		// 文章评论树: GET /api/comments/blog/:blogId
		commentsPublic.GET("/:blogId", r.commentHandler.ListByArticle)

		// 提交评论: POST /api/comments/blog/:blogId (带频率限制)
		commentsPublic.POST("/:blogId", middleware.CustomRateLimit(10, 10), r.commentHandler.Create)
	}

	// 管理员专属的评论接口
	commentsAdmin := api.Group("/comments").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		commentsAdmin.GET("", r.commentHandler.AdminList)
		commentsAdmin.GET("/pending", r.commentHandler.ListPending)
		commentsAdmin.GET("/stats", r.commentHandler.Stats)
		commentsAdmin.PATCH("/bulk-moderate", r.commentHandler.BulkModerate)
		commentsAdmin.PATCH("/:blogId/:commentId/moderate", r.commentHandler.Moderate)
		commentsAdmin.DELETE("/:blogId/:commentId", r.commentHandler.Delete)
	}
}

// registerSubscriptionRoutes 注册订阅相关的路由
func (r *Router) registerSubscriptionRoutes(api *gin.RouterGroup) {
	// --- 前台订阅生命周期接口 ---
	subsPublic := api.Group("/subscriptions")
	{
		// 申请订阅: POST /api/subscriptions/subscribe (带频率限制)
		subsPublic.POST("/subscribe", middleware.SubscribeRateLimit(), r.subscriberHandler.Subscribe)

		// 确认订阅: GET /api/subscriptions/confirm/:token
		subsPublic.GET("/confirm/:token", r.subscriberHandler.Confirm)

		// 退订: POST /api/subscriptions/unsubscribe/:token
		subsPublic.POST("/unsubscribe/:token", r.subscriberHandler.Unsubscribe)

		// 更新订阅偏好: PUT /api/subscriptions/preferences/:token
		subsPublic.PUT("/preferences/:token", r.subscriberHandler.UpdatePreferences)
	}

	// --- 后台订阅管理接口 ---
	subsAdmin := api.Group("/subscriptions").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		subsAdmin.GET("", r.subscriberHandler.AdminList)
		subsAdmin.GET("/stats", r.subscriberHandler.Stats)

		// 推送博客更新邮件: POST /api/subscriptions/send-newsletter
		subsAdmin.POST("/send-newsletter", r.subscriberHandler.SendNewsletter)
	}
}

// registerSettingRoutes 注册站点配置相关的路由
func (r *Router) registerSettingRoutes(api *gin.RouterGroup) {
	// 公开站点配置，供前台启动时拉取
	api.GET("/site-config", r.settingHandler.GetSiteConfig)

	// 获取配置接口允许普通用户访问（但只返回公开配置）
	settings := api.Group("/settings").Use(r.mw.JWTAuth())
	{
		settings.POST("/get-by-keys", r.settingHandler.GetSettingsByKeys)
	}

	// 更新配置和测试邮件需要管理员权限
	settingsAdmin := api.Group("/admin/settings").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		settingsAdmin.GET("", r.settingHandler.ListSettings)
		settingsAdmin.PUT("", r.settingHandler.UpdateSettings)
		settingsAdmin.POST("/test-email", r.settingHandler.TestEmail)
	}
}

// registerRSSRoutes 注册 RSS 订阅源路由
func (r *Router) registerRSSRoutes(api *gin.RouterGroup) {
	api.GET("/rss", r.rssHandler.GetRSSFeed)
}
