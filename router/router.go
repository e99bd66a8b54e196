package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chaiadda/backend/controllers"
	"github.com/chaiadda/backend/middlewares"
	"github.com/chaiadda/backend/realtime"
	"github.com/chaiadda/backend/services"
)

// SetupRouter wires the HTTP surface. The hub and mailer come in from main
// so the lifecycle engine gets its notification transport by injection
// rather than through a package-level singleton.
func SetupRouter(db *gorm.DB, hub *realtime.Hub, mailer services.Mailer) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	orderService := services.NewOrderService(db, hub)

	authCtrl := controllers.NewAuthController(db, mailer)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(orderService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/signup", authCtrl.Signup)
		auth.POST("/verify-otp", authCtrl.VerifySignupOTP)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/admin/login", authCtrl.AdminLogin)
	}

	r.GET("/api/menu", menuCtrl.GetAllMenuItems)
	r.GET("/api/menu/available", menuCtrl.GetAvailableMenuItems)
	r.GET("/api/menu/:item_id", menuCtrl.GetMenuItem)

	// WebSocket endpoint; token travels in the query string.
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("", controllers.WSHandler(hub))
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := r.Group("/api")
	authed.Use(middlewares.AuthMiddleware())
	{
		authed.POST("/orders", orderCtrl.PlaceOrder)
		authed.GET("/orders/my-orders", orderCtrl.GetMyOrders)
		authed.GET("/orders/:order_id", orderCtrl.GetOrder)
		authed.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/api")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:order_id/accept", orderCtrl.AcceptOrder)
		admin.PATCH("/orders/:order_id/reject", orderCtrl.RejectOrder)
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		admin.GET("/orders/stats/daily", orderCtrl.GetDailyStats)

		admin.POST("/menu", menuCtrl.CreateMenuItem)
		admin.PUT("/menu/:item_id", menuCtrl.UpdateMenuItem)
		admin.PATCH("/menu/:item_id/availability", menuCtrl.ToggleAvailability)
		admin.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)
	}

	return r
}
