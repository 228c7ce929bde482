package apiserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/auth"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/config"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/telemetry"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Orders     ports.OrderService
	Users      ports.UserService
	Sandwiches ports.SandwichService
	Notifier   ports.StatusNotifier
	Tokens     *auth.TokenIssuer
}

// NewRouter builds the gin engine with middleware and all routes attached.
func NewRouter(cfg *config.Config, svcs Services, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(authMiddleware(svcs.Tokens))

	orderHandler := NewOrderHandler(svcs.Orders, svcs.Notifier, log)
	userHandler := NewUserHandler(svcs.Users, svcs.Tokens, cfg.Auth.CookieSecure, log)
	sandwichHandler := NewSandwichHandler(svcs.Sandwiches, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(telemetry.Handler()))

	user := r.Group("/user")
	{
		user.POST("/register", userHandler.Register)
		user.POST("/login", userHandler.Login)
		user.POST("/logout", userHandler.Logout)
		user.GET("/check-status", userHandler.CheckStatus)
		user.GET("", protect(), protectAdmin(), userHandler.List)
		user.GET("/:username", protect(), userHandler.Get)
		user.PUT("/:username", protect(), userHandler.Update)
		user.DELETE("/:username", protect(), userHandler.Delete)
	}

	order := r.Group("/order", protect())
	{
		order.POST("", orderHandler.Create)
		order.GET("", orderHandler.List)
		order.GET("/:orderId", orderHandler.Get)
		order.GET("/:orderId/status", orderHandler.WaitStatus)
	}

	sandwich := r.Group("/sandwich")
	{
		sandwich.GET("", sandwichHandler.List)
		sandwich.GET("/utils", sandwichHandler.Utils)
		sandwich.GET("/:sandwichId", sandwichHandler.Get)
		sandwich.POST("", protect(), protectAdmin(), sandwichHandler.Create)
		sandwich.PUT("/:sandwichId", protect(), protectAdmin(), sandwichHandler.Update)
		sandwich.DELETE("/:sandwichId", protect(), protectAdmin(), sandwichHandler.Delete)
	}

	return r
}
