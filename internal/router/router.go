package router

import (
	"fmt"
	"strings"

	"github.com/shopizen/internal/cache"
	"github.com/shopizen/internal/config"
	adminhandlers "github.com/shopizen/internal/http/handlers/admin"
	publichandlers "github.com/shopizen/internal/http/handlers/public"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "shopizen"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limited",
	}
	loginLimiter := RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONFields("email", "mobile"))

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		redisStatus := "disabled"
		if cache.Enabled() {
			redisStatus = "ok"
			if err := cache.Ping(ctx.Request.Context()); err != nil {
				redisStatus = "unavailable"
			}
		}
		response.Success(ctx, gin.H{"status": "ok", "redis": redisStatus, "workspaces": c.Workspaces.Len()})
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 客户端令牌签发（无需令牌）
		apiV1.POST("/client/token", publicHandler.IssueClientToken)

		// 客户端工作区接口
		client := apiV1.Group("")
		client.Use(ClientTokenMiddleware(c.ClientTokenService, c.Workspaces))
		{
			client.GET("/products", publicHandler.GetProducts)
			client.GET("/products/:id", publicHandler.GetProduct)
			client.GET("/captcha/image", publicHandler.GetImageCaptcha)

			// 会话
			client.GET("/session", publicHandler.GetSession)
			client.POST("/session/login/email", loginLimiter, publicHandler.LoginWithEmail)
			client.POST("/session/login/mobile", loginLimiter, publicHandler.LoginWithMobile)
			client.POST("/session/register", publicHandler.Register)
			client.POST("/session/logout", publicHandler.Logout)
			client.POST("/session/activity", publicHandler.RecordActivity)
			client.POST("/session/extend", publicHandler.ExtendSession)

			// 购物车
			client.GET("/cart", publicHandler.GetCart)
			client.POST("/cart/items", publicHandler.AddCartItem)
			client.DELETE("/cart/items", publicHandler.RemoveCartItem)
			client.PATCH("/cart/items/quantity", publicHandler.UpdateCartQuantity)
			client.PATCH("/cart/items/variant", publicHandler.UpdateCartVariant)
			client.DELETE("/cart", publicHandler.ClearCart)

			// 心愿单与对比
			client.GET("/wishlist", publicHandler.GetWishlist)
			client.POST("/wishlist/toggle", publicHandler.ToggleWishlist)
			client.DELETE("/wishlist/:id", publicHandler.RemoveWishlistItem)
			client.GET("/comparison", publicHandler.GetComparison)
			client.POST("/comparison", publicHandler.AddComparison)
			client.POST("/comparison/toggle", publicHandler.ToggleComparison)
			client.DELETE("/comparison/:id", publicHandler.RemoveComparison)
			client.DELETE("/comparison", publicHandler.ClearComparison)

			// 搜索历史
			client.GET("/search-history", publicHandler.GetSearchHistory)
			client.POST("/search-history", publicHandler.RecordSearch)
			client.DELETE("/search-history/term", publicHandler.RemoveSearchTerm)
			client.DELETE("/search-history", publicHandler.ClearSearchHistory)

			// 结算与订单（游客可用）
			client.GET("/checkout", publicHandler.GetCheckout)
			client.POST("/checkout/confirm", publicHandler.ConfirmCheckoutDetails)
			client.POST("/checkout/orders", publicHandler.PlaceOrder)
			client.GET("/orders", publicHandler.ListOrders)
			client.GET("/orders/:id", publicHandler.GetOrder)
			client.POST("/orders/:id/track", publicHandler.TrackOrder)
			client.DELETE("/orders/:id/track", publicHandler.StopTrackingOrder)
			client.POST("/orders/:id/items/:item_id/terminate", publicHandler.CancelOrReturnOrderItem)

			// 需登录的接口
			member := client.Group("")
			member.Use(SessionGuardMiddleware())
			{
				member.GET("/address", publicHandler.GetAddress)
				member.PUT("/address", publicHandler.SaveAddress)
				member.GET("/notifications", publicHandler.ListNotifications)
				member.POST("/notifications/read-all", publicHandler.MarkAllNotificationsRead)
				member.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
			}

			// 管理员接口
			admin := client.Group("/admin")
			admin.Use(SessionGuardMiddleware(), AdminRBACMiddleware(c.AuthzService))
			{
				admin.GET("/orders", adminHandler.GetAdminOrders)
				admin.POST("/orders/:owner/:id/items/:item_id/advance", adminHandler.AdvanceAdminOrderItem)
				admin.POST("/orders/:owner/:id/items/:item_id/terminate", adminHandler.CancelOrReturnAdminOrderItem)
				admin.GET("/accounts", adminHandler.GetAdminAccounts)

				admin.GET("/authz/me", adminHandler.GetAuthzMe)
				admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
				admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
				admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				admin.GET("/authz/accounts/:key/roles", adminHandler.GetAuthzAccountRoles)
				admin.PUT("/authz/accounts/:key/roles", adminHandler.SetAuthzAccountRoles)
			}
		}
	}

	return r
}
