package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/controllers"
	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/middlewares"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/services"
)

// Deps carries everything the handlers need. Wired once in main and
// injected here.
type Deps struct {
	DB       *gorm.DB
	Hub      *kds.Hub
	Registry *kds.Registry
	Carts    cart.Provider
	Orders   *services.OrderService
	Checkout *services.CheckoutService
	Payments *services.PaymentService
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.LoggerMiddleware())

	userController := controllers.NewUserController(deps.DB)
	restaurantController := controllers.NewRestaurantController(deps.DB)
	categoryController := controllers.NewCategoryController(deps.DB)
	menuController := controllers.NewMenuController(deps.DB)
	modifierController := controllers.NewModifierController(deps.DB)
	eventController := controllers.NewEventController(deps.DB)
	publicController := controllers.NewPublicController(deps.DB)
	cartController := controllers.NewCartController(deps.DB, deps.Carts)
	checkoutController := controllers.NewCheckoutController(deps.DB, deps.Carts, deps.Checkout, deps.Payments)
	orderController := controllers.NewOrderController(deps.DB, deps.Orders, deps.Registry)
	kdsController := controllers.NewKDSController(deps.Hub)
	qrController := controllers.NewQRController(deps.DB)

	r.Static("/uploads", "./public/uploads")

	// Customer-facing routes, no authentication.
	public := r.Group("/api/public")
	public.Use(middlewares.NewRateLimiter(120, 60).RateLimit())
	{
		public.GET("/restaurants/:slug", restaurantController.GetBySlug)
		public.GET("/restaurants/:slug/menu", publicController.GetMenu)

		cartGroup := public.Group("/restaurants/:slug/cart")
		{
			cartGroup.GET("", cartController.GetCart)
			cartGroup.POST("/items", cartController.AddItem)
			cartGroup.POST("/items/:lineKey/decrement", cartController.DecrementLine)
			cartGroup.DELETE("/items/:lineKey", cartController.RemoveLine)
			cartGroup.DELETE("", cartController.ClearCart)
			cartGroup.PUT("/table", cartController.SetTable)
		}

		public.POST("/restaurants/:slug/checkout", middlewares.NewStrictRateLimiter(), checkoutController.Submit)
	}

	// Payment gateway webhook; authenticated by its signature.
	r.POST("/api/payments/notify", checkoutController.PaymentNotification)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", userController.Register)
		auth.POST("/login", middlewares.NewStrictRateLimiter(), userController.Login)
	}

	r.POST("/api/restaurants", restaurantController.CreateRestaurant)

	// Staff routes. Kitchen role covers the display and ticket actions;
	// admin additionally manages the catalog and settings.
	staff := r.Group("/api")
	staff.Use(middlewares.AuthMiddleware())
	{
		staff.GET("/profile", userController.GetProfile)

		kitchen := staff.Group("/")
		kitchen.Use(middlewares.RequireRole(models.RoleKitchen))
		{
			kitchen.GET("/kitchen/display", orderController.GetKitchenDisplay)
			kitchen.GET("/orders", orderController.GetAllOrders)
			kitchen.GET("/orders/:id", orderController.GetOrderByID)
			kitchen.POST("/orders/:id/cooking", orderController.StartCooking)
			kitchen.POST("/orders/:id/ready", orderController.MarkReady)
			kitchen.POST("/orders/:id/deliver", orderController.Deliver)
			kitchen.POST("/orders/:id/cancel", orderController.Cancel)
		}

		admin := staff.Group("/admin")
		admin.Use(middlewares.RequireRole(models.RoleAdmin))
		{
			admin.PUT("/settings", restaurantController.UpdateSettings)

			admin.POST("/categories", categoryController.CreateCategory)
			admin.GET("/categories", categoryController.GetCategories)
			admin.PUT("/categories/:id", categoryController.UpdateCategory)
			admin.DELETE("/categories/:id", categoryController.DeleteCategory)

			admin.POST("/menu", menuController.CreateMenuItem)
			admin.GET("/menu", menuController.GetMenuItems)
			admin.GET("/menu/:id", menuController.GetMenuItemByID)
			admin.PUT("/menu/:id", menuController.UpdateMenuItem)
			admin.PATCH("/menu/:id/availability", menuController.SetAvailability)
			admin.DELETE("/menu/:id", menuController.DeleteMenuItem)

			admin.POST("/modifier-groups", modifierController.CreateGroup)
			admin.GET("/modifier-groups", modifierController.GetGroups)
			admin.PUT("/modifier-groups/:id", modifierController.UpdateGroup)
			admin.DELETE("/modifier-groups/:id", modifierController.DeleteGroup)
			admin.POST("/modifier-groups/:id/options", modifierController.AddOption)
			admin.DELETE("/modifier-groups/:id/options/:optionId", modifierController.DeleteOption)
			admin.POST("/item-modifiers", modifierController.AttachToItem)
			admin.DELETE("/item-modifiers", modifierController.DetachFromItem)

			admin.POST("/events", eventController.CreateEvent)
			admin.GET("/events", eventController.GetEvents)
			admin.PUT("/events/:id", eventController.UpdateEvent)
			admin.DELETE("/events/:id", eventController.DeleteEvent)

			admin.GET("/qr/:table", qrController.TableQR)
		}
	}

	// Websocket; the token rides in the query string because browsers
	// cannot set headers on websocket connects.
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/kitchen", kdsController.HandleWebSocket)
	}

	return r
}
