package main

import (
	"context"
	"log"
	"os"

	_ "dealership/api/swagger" // swagger docs
	"dealership/internal/database"
	"dealership/internal/handler"
	"dealership/internal/repository"
	"dealership/internal/service"
	"dealership/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Vehicle Dealership API
// @version         1.0
// @description     Commercial lifecycle backend for a vehicle rental and sales dealership.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "dealership"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	statusRepo := repository.NewStatusRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	contractRepo := repository.NewContractRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	purchaseRepo := repository.NewPurchaseInvoiceRepository(db)
	saleRepo := repository.NewSaleInvoiceRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditService := service.NewAuditService(auditRepo)
	statusService := service.NewStatusService(statusRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, statusRepo, auditService, wsHub)
	clientService := service.NewClientService(clientRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	contractService := service.NewContractService(
		contractRepo, installmentRepo, clientRepo, vehicleRepo, vehicleService, auditService, txManager)
	installmentService := service.NewInstallmentService(installmentRepo, auditService, txManager)
	reservationService := service.NewReservationService(
		reservationRepo, clientRepo, vehicleRepo, vehicleService, auditService, txManager)
	purchaseService := service.NewPurchaseInvoiceService(
		purchaseRepo, supplierRepo, vehicleRepo, auditService, txManager)
	saleService := service.NewSaleInvoiceService(
		saleRepo, purchaseRepo, clientRepo, vehicleRepo, reservationRepo, vehicleService, auditService, txManager)

	if err := statusService.Seed(context.Background()); err != nil {
		log.Fatalf("Status catalog seeding failed: %v", err)
	}

	// Initialize Handlers
	statusHandler := handler.NewStatusHandler(statusService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	clientHandler := handler.NewClientHandler(clientService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	contractHandler := handler.NewContractHandler(contractService)
	installmentHandler := handler.NewInstallmentHandler(installmentService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	invoiceHandler := handler.NewInvoiceHandler(purchaseService, saleService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Actor"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for vehicle status events
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	statusHandler.RegisterRoutes(router.Group(""))
	vehicleHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	supplierHandler.RegisterRoutes(router.Group(""))
	contractHandler.RegisterRoutes(router.Group(""))
	installmentHandler.RegisterRoutes(router.Group(""))
	reservationHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
