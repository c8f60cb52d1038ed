package main

import (
	"context"
	"os"
	"time"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/ledger"
	"backend/internal/middleware"
	"backend/internal/refnum"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Pharmacy Distribution API
// @version         1.0
// @description     Purchasing, batch-tracked inventory, sales and returns for a pharmaceutical distributor.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully")

	// WebSocket hub for stock alerts
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	purchaseReturnRepo := repository.NewPurchaseReturnRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	salesReturnRepo := repository.NewSalesReturnRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Core components
	refs := refnum.NewGenerator(db)
	stockLedger := ledger.New(batchRepo, movementRepo, purchaseRepo, wsHub, log)

	// Services
	activityService := service.NewActivityService(activityRepo, log)
	userService := service.NewUserService(userRepo, activityService, log)
	catalogService := service.NewCatalogService(productRepo, supplierRepo, customerRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, batchRepo, productRepo, supplierRepo, stockLedger, refs, activityService, txManager, log)
	purchaseReturnService := service.NewPurchaseReturnService(purchaseReturnRepo, purchaseRepo, batchRepo, productRepo, stockLedger, refs, activityService, txManager, log)
	inventoryService := service.NewInventoryService(batchRepo, movementRepo, stockLedger, activityService, txManager, wsHub, log)
	salesService := service.NewSalesService(salesRepo, batchRepo, productRepo, customerRepo, stockLedger, refs, activityService, txManager, log)
	salesReturnService := service.NewSalesReturnService(salesReturnRepo, salesRepo, batchRepo, productRepo, stockLedger, refs, activityService, txManager, log)
	reportService := service.NewReportService(db, log)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	purchaseReturnHandler := handler.NewPurchaseReturnHandler(purchaseReturnService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	salesHandler := handler.NewSalesHandler(salesService)
	salesReturnHandler := handler.NewSalesReturnHandler(salesReturnService)
	reportHandler := handler.NewReportHandler(reportService)
	activityHandler := handler.NewActivityHandler(activityService)

	// Expiry sweep on boot, then daily
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			if _, err := inventoryService.ExpirySweep(context.Background(), time.Now()); err != nil {
				log.WithError(err).Error("Expiry sweep failed")
			}
			<-ticker.C
		}
	}()

	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for stock alerts
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API routing
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	catalogHandler.RegisterRoutes(root)
	purchaseHandler.RegisterRoutes(root)
	purchaseReturnHandler.RegisterRoutes(root)
	inventoryHandler.RegisterRoutes(root)
	salesHandler.RegisterRoutes(root)
	salesReturnHandler.RegisterRoutes(root)
	reportHandler.RegisterRoutes(root)
	activityHandler.RegisterRoutes(root)

	port := getenv("PORT", "8080")
	log.WithField("port", port).Info("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
