package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/config"
	"github.com/yeremiapane/global-bites/controllers"
	"github.com/yeremiapane/global-bites/kds"
	"github.com/yeremiapane/global-bites/middlewares"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

// Dependencies are the long-lived objects the HTTP layer needs.
type Dependencies struct {
	Server    config.ServerConfig
	RateLimit config.RateLimitConfig
	JWT       *utils.JWTManager
	Hub       *kds.Hub
	Orders    *services.OrderService
	Menus     *services.MenuService
	AI        *services.AIService
	Analytics *services.AnalyticsService
	Auth      *services.AuthService
}

func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(deps.Server.TrustedProxies); err != nil {
		return nil, err
	}

	orderLimit, err := middlewares.RateLimit(deps.RateLimit.Orders)
	if err != nil {
		return nil, err
	}
	loginLimit, err := middlewares.RateLimit(deps.RateLimit.Login)
	if err != nil {
		return nil, err
	}

	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.Server.AllowedOrigins))

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(deps.Auth)
	dishCtrl := controllers.NewDishController(deps.Menus)
	menuCtrl := controllers.NewMenuController(deps.Menus)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	aiCtrl := controllers.NewAIController(deps.AI)
	analyticsCtrl := controllers.NewAnalyticsController(deps.Analytics)
	kdsCtrl := controllers.NewKDSController(deps.Hub, deps.Server.AllowedOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/login", loginLimit, userCtrl.Login)

	r.GET("/dishes", dishCtrl.ListPublicDishes)
	r.GET("/dishes/search", dishCtrl.SearchDishes)
	r.GET("/dishes/:dish_id", dishCtrl.GetPublicDish)

	r.GET("/menus", menuCtrl.ListPublicMenus)
	r.GET("/menus/:menu_id/dishes", menuCtrl.ListPublicMenuDishes)

	// Customer tidak perlu login untuk memesan
	r.POST("/orders", orderLimit, orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrder)

	r.POST("/ai/chat", aiCtrl.Chat)

	r.GET("/ws/kds", middlewares.WebSocketAuthMiddleware(deps.JWT), kdsCtrl.KDSHandler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	session := r.Group("/auth")
	session.Use(middlewares.AuthMiddleware(deps.JWT))
	{
		session.GET("/session", userCtrl.Session)
		session.POST("/logout", userCtrl.Logout)
		session.PATCH("/me", userCtrl.UpdateProfile)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(deps.JWT), middlewares.RequireRole(models.RoleAdmin, models.RoleStaff))

	admin.POST("/users", middlewares.RequireRole(models.RoleAdmin), userCtrl.CreateUser)

	// DISHES
	admin.GET("/dishes", dishCtrl.ListDishes)
	admin.POST("/dishes", dishCtrl.CreateDish)
	admin.GET("/dishes/:dish_id", dishCtrl.GetDish)
	admin.PATCH("/dishes/:dish_id", dishCtrl.UpdateDish)
	admin.DELETE("/dishes/:dish_id", dishCtrl.DeleteDish)
	admin.PATCH("/dishes/:dish_id/active", dishCtrl.SetDishActive)

	// MENUS
	admin.GET("/menus", menuCtrl.ListMenus)
	admin.POST("/menus", menuCtrl.CreateMenu)
	admin.GET("/menus/:menu_id", menuCtrl.GetMenu)
	admin.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
	admin.GET("/menus/:menu_id/dishes", menuCtrl.ListMenuDishes)
	admin.POST("/menus/:menu_id/dishes/:dish_id", menuCtrl.AttachDish)
	admin.DELETE("/menus/:menu_id/dishes/:dish_id", menuCtrl.DetachDish)

	// ORDERS
	admin.GET("/orders", orderCtrl.ListOrders)
	admin.GET("/orders/:order_id", orderCtrl.GetOrder)
	admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

	// AI
	admin.POST("/ai/suggestions", aiCtrl.GenerateSuggestions)
	admin.POST("/ai/logs", aiCtrl.LogAction)

	// ANALYTICS
	analytics := admin.Group("/analytics")
	{
		analytics.GET("/dashboard", analyticsCtrl.Dashboard)
		analytics.GET("/orders", analyticsCtrl.OrderReport)
		analytics.GET("/orders/export", analyticsCtrl.ExportOrderReport)
		analytics.GET("/dishes", analyticsCtrl.DishReport)
		analytics.GET("/ai", analyticsCtrl.AIPerformance)
		analytics.GET("/insights", analyticsCtrl.StrategicInsights)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.RespondAppError(c, utils.NewNotFound("route %s not found", c.Request.URL.Path))
	})

	return r, nil
}
