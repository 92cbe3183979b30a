package router

import (
	"fmt"
	"strings"

	"github.com/compoundrx/storefront/internal/cache"
	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
	adminhandlers "github.com/compoundrx/storefront/internal/http/handlers/admin"
	publichandlers "github.com/compoundrx/storefront/internal/http/handlers/public"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the HTTP route tree.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.Static("/uploads", "./uploads")

	apiV1 := r.Group("/api/v1")
	{
		// Storefront catalog, no auth.
		public := apiV1.Group("/public")
		{
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
		}

		// Guest browsing state, keyed by the X-Guest-Token header.
		guest := apiV1.Group("/guest")
		{
			guest.POST("/token", publicHandler.IssueGuestToken)
			guest.GET("/state", publicHandler.GetGuestState)
			guest.POST("/cart/items", publicHandler.AddGuestCartItem)
			guest.PUT("/cart/items/:product_id", publicHandler.SetGuestCartQuantity)
			guest.DELETE("/cart/items/:product_id", publicHandler.DeleteGuestCartItem)
			guest.POST("/favorites", publicHandler.AddGuestFavorite)
			guest.DELETE("/favorites/:product_id", publicHandler.DeleteGuestFavorite)
		}

		// Customer authentication.
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// Signed-in customer routes.
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(c.UserAuthService, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetMe)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:product_id", publicHandler.SetCartQuantity)
			user.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.GET("/favorites", publicHandler.GetFavorites)
			user.POST("/favorites", publicHandler.AddFavorite)
			user.DELETE("/favorites/:product_id", publicHandler.DeleteFavorite)
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.GetOrders)
			user.GET("/orders/:order_id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByNo)
			user.POST("/orders/:order_id/cancel", publicHandler.CancelOrder)
			user.POST("/orders/:order_id/payment-intent", publicHandler.CreatePaymentIntent)
			user.POST("/orders/:order_id/checkout-session", publicHandler.CreateCheckoutSession)
			user.POST("/orders/:order_id/confirm-payment", publicHandler.ConfirmPayment)
		}

		// Stripe calls this; auth is the signature header.
		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)

		// Admin backend.
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(c.AuthService, c.AdminRepo))
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.ChangeAdminPassword)

				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateAdminProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateAdminProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteAdminProduct)
				authorized.POST("/products/:id/stock", adminHandler.AdjustAdminProductStock)

				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateAdminCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateAdminCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteAdminCategory)

				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateAdminOrderStatus)

				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateAdminUserStatus)

				authorized.GET("/reports/overview", adminHandler.GetAdminOverview)
				authorized.GET("/reports/top-products", adminHandler.GetAdminTopProducts)

				authorized.GET("/settings/:key", adminHandler.GetAdminSetting)
				authorized.PUT("/settings/:key", adminHandler.UpdateAdminSetting)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
