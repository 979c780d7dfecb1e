package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hornada/hornada/internal/authz"
	"github.com/hornada/hornada/internal/cache"
	"github.com/hornada/hornada/internal/config"
	adminhandlers "github.com/hornada/hornada/internal/http/handlers/admin"
	publichandlers "github.com/hornada/hornada/internal/http/handlers/public"
	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP route table.
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
		redisPrefix = "hnd"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Storefront catalog, no identity needed.
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/branches", publicHandler.GetBranches)
			public.GET("/branches/:slug", publicHandler.GetBranchBySlug)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/offers", publicHandler.GetOffers)
			public.GET("/offers/:slug", publicHandler.GetOfferBySlug)
			public.GET("/captcha", publicHandler.GetCaptcha)
		}

		// Customer auth.
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// Cart and orders work for guests and signed-in users alike. The
		// owner key comes from the token or the X-Cart-Token header.
		shop := apiV1.Group("")
		shop.Use(OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), CartOwnerMiddleware())
		{
			shop.GET("/cart", publicHandler.GetCart)
			shop.GET("/cart/issues", publicHandler.GetCartIssues)
			shop.POST("/cart/products", publicHandler.AddCartProduct)
			shop.POST("/cart/offers", publicHandler.AddCartOffer)
			shop.PUT("/cart/items/:key", publicHandler.SetCartQuantity)
			shop.DELETE("/cart/items/:key", publicHandler.RemoveCartItem)
			shop.DELETE("/cart", publicHandler.ClearCart)
			shop.PUT("/cart/branch", publicHandler.SelectBranch)

			shop.POST("/orders", publicHandler.SubmitOrder)
			shop.GET("/orders", publicHandler.GetOrders)
			shop.GET("/orders/:id", publicHandler.GetOrder)
			shop.POST("/orders/:id/cancel", publicHandler.CancelOrder)
		}

		// Signed-in customer profile.
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetProfile)
			user.PUT("/me/profile", publicHandler.UpdateProfile)
			user.PUT("/me/password", publicHandler.ChangePassword)
		}

		// Back office.
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				authorized.GET("/branches", adminHandler.GetAdminBranches)
				authorized.GET("/branches/:id", adminHandler.GetAdminBranch)
				authorized.POST("/branches", adminHandler.CreateBranch)
				authorized.PUT("/branches/:id", adminHandler.UpdateBranch)
				authorized.DELETE("/branches/:id", adminHandler.DeleteBranch)

				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/low-stock", adminHandler.GetLowStockProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.PATCH("/products/:id/stock", adminHandler.SetProductStock)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.GET("/offers", adminHandler.GetAdminOffers)
				authorized.GET("/offers/:id", adminHandler.GetAdminOffer)
				authorized.POST("/offers", adminHandler.CreateOffer)
				authorized.PUT("/offers/:id", adminHandler.UpdateOffer)
				authorized.DELETE("/offers/:id", adminHandler.DeleteOffer)

				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)

				authorized.GET("/settings", adminHandler.GetSettings)
				authorized.PUT("/settings", adminHandler.UpdateSettings)

				authorized.GET("/admins", adminHandler.ListAdmins)
				authorized.POST("/admins", adminHandler.CreateAdmin)
				authorized.PUT("/admins/:id", adminHandler.UpdateAdmin)
				authorized.DELETE("/admins/:id", adminHandler.DeleteAdmin)
				authorized.GET("/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/roles", adminHandler.ListRoles)
				authorized.GET("/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
