package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/config"
	"github.com/menudigital/backend/database"
	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/router"
	"github.com/menudigital/backend/services"
	"github.com/menudigital/backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	utils.InitLogger()
	utils.InitJWT()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Error connecting to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Restaurant{},
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.ItemModifier{},
		&models.RestaurantEvent{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.DBChange{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Error migrating database: %v", err)
	}

	if err := database.ExecuteTriggers(db); err != nil {
		utils.ErrorLogger.Fatalf("Error installing triggers: %v", err)
	}

	var carts cart.Provider
	if redisClient := config.InitRedis(); redisClient != nil {
		carts = cart.NewRedisProvider(redisClient)
		utils.InfoLogger.Println("Cart storage: redis")
	} else {
		carts = cart.NewMemoryProvider()
		utils.InfoLogger.Println("Cart storage: in-memory")
	}

	hub := kds.NewHub()
	orders := services.NewOrderService(db)
	registry := kds.NewRegistry(orders.ActiveOrders)

	gateway := services.NewSnapGateway()
	checkout := services.NewCheckoutService(db, gateway)
	payments := services.NewPaymentService(db, orders, gateway)

	monitor := services.NewChangeMonitor(db, hub, registry)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(router.Deps{
		DB:       db,
		Hub:      hub,
		Registry: registry,
		Carts:    carts,
		Orders:   orders,
		Checkout: checkout,
		Payments: payments,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Server listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("Server error: %v", err)
	}
}
