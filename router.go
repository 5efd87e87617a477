package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/config"
	"github.com/sipstation/bubble-tea-pos-api/controllers"
	"github.com/sipstation/bubble-tea-pos-api/middleware"
	"github.com/sipstation/bubble-tea-pos-api/services"
)

// dependencies are the long-lived clients built in main and shared by every
// service. images is nil when image storage is not configured.
type dependencies struct {
	cfg      *config.Config
	db       *gorm.DB
	logger   *zap.Logger
	verifier middleware.TokenVerifier
	images   services.ImageService
}

// setupRouter wires services and controllers and registers every route
func setupRouter(deps dependencies) *gin.Engine {
	cfg, db, logger := deps.cfg, deps.db, deps.logger

	options := services.DefaultOptionTable(cfg.TaxRate)
	inventory := services.NewInventoryService(db, logger)
	orders := services.NewOrderService(db, services.OrderServiceConfig{
		MaxItems:     cfg.MaxOrderItems,
		TxTimeout:    cfg.DBTxTimeout,
		EnforcePrice: cfg.PriceCheckMode == config.PriceCheckEnforce,
	}, options, inventory, logger)
	reports := services.NewReportService(db, cfg.PopularItemsLimit, logger)
	catalog := services.NewCatalogService(db, options, deps.images, logger)
	managers := services.NewManagerService(db, logger)

	orderController := controllers.NewOrderController(orders, logger)
	inventoryController := controllers.NewInventoryController(inventory, reports, logger)
	reportController := controllers.NewReportController(reports, logger)
	menuController := controllers.NewMenuController(catalog, logger)
	managerController := controllers.NewManagerController(managers, logger)
	authController := controllers.NewAuthController(deps.verifier, managers, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = 16 << 20

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus(db))

		v1.POST("/auth/google", authController.GoogleLogin)
		v1.GET("/auth/me", middleware.EnsureValidToken(deps.verifier, logger.Named("auth")), authController.Me)

		// Kiosk routes
		v1.GET("/menu", menuController.ListMenuItems)
		v1.GET("/menu/options", menuController.GetOptions)
		v1.GET("/menu/:id", menuController.GetMenuItem)
		v1.POST("/menu/quote", menuController.Quote)
		v1.GET("/toppings", menuController.ListToppings)
		v1.POST("/orders", orderController.CreateOrder)

		// Manager console routes
		manager := v1.Group("",
			middleware.EnsureValidToken(deps.verifier, logger.Named("auth")),
			middleware.RequireManager(managers, logger.Named("auth")),
		)
		{
			manager.GET("/orders", orderController.ListOrders)
			manager.GET("/orders/:id", orderController.GetOrder)
			manager.PATCH("/orders/:id/status", orderController.UpdateOrderStatus)
			manager.DELETE("/orders/:id", orderController.DeleteOrder)

			manager.GET("/inventory", inventoryController.ListInventory)
			manager.GET("/inventory/alerts/low-stock", inventoryController.ListLowStock)
			manager.GET("/inventory/reports/usage", inventoryController.UsageReport)
			manager.POST("/inventory/usage", inventoryController.RecordUsage)
			manager.GET("/inventory/:id", inventoryController.GetInventoryItem)
			manager.POST("/inventory", inventoryController.AddInventoryItem)
			manager.PUT("/inventory/:id", inventoryController.UpdateInventoryItem)
			manager.DELETE("/inventory/:id", inventoryController.DeleteInventoryItem)

			manager.GET("/reports/sales", reportController.SalesSummary)
			manager.GET("/reports/popular", reportController.PopularItems)
			manager.GET("/reports/status", reportController.OrdersByStatus)

			manager.POST("/menu", menuController.CreateMenuItem)
			manager.PUT("/menu/:id", menuController.UpdateMenuItem)
			manager.DELETE("/menu/:id", menuController.DeleteMenuItem)
			manager.POST("/menu/:id/image", menuController.UploadMenuImage)
			manager.POST("/toppings", menuController.CreateTopping)

			manager.GET("/managers", managerController.ListManagers)
			manager.POST("/managers", managerController.AddManager)
			manager.DELETE("/managers/:id", managerController.DeleteManager)
			manager.GET("/managers/check/:email", managerController.CheckManager)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bubble Tea POS API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
