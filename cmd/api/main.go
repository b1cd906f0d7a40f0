package main

import (
	"log"
	"os"
	"strings"

	_ "pharmaledger/api/swagger" // swagger docs
	"pharmaledger/internal/auth"
	"pharmaledger/internal/database"
	"pharmaledger/internal/handler"
	"pharmaledger/internal/middleware"
	"pharmaledger/internal/repository"
	"pharmaledger/internal/service"
	"pharmaledger/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Pharmacy Ledger API
// @version         1.0
// @description     Multi-unit pharmacy ledger with role-scoped transaction visibility.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "pharmaledger")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	seedEmail := envOr("SEED_ADMIN_EMAIL", "admin@pharmaledger.local")
	seedPassword := envOr("SEED_ADMIN_PASSWORD", "change-me-now")
	if err := database.SeedSuperAdmin(db, seedEmail, seedPassword); err != nil {
		log.Fatalf("Seeding super_admin failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	stakeholderRepo := repository.NewStakeholderRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	secret := middleware.GetJWTSecret()
	gate := auth.NewGate(secret, userRepo)

	authService := service.NewAuthService(userRepo, refreshRepo, secret)
	userService := service.NewUserService(userRepo, stakeholderRepo, unitRepo)
	transactionService := service.NewTransactionService(txRepo, stakeholderRepo, auditRepo, txManager, wsHub)
	stakeholderService := service.NewStakeholderService(stakeholderRepo)
	unitService := service.NewUnitService(unitRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	stakeholderHandler := handler.NewStakeholderHandler(stakeholderService)
	unitHandler := handler.NewUnitHandler(unitService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"), ",")
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

	// WebSocket endpoint (unit transaction feed)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, gate)
	})

	// Register API Routes: public auth endpoints, then everything behind
	// the authentication gate.
	public := router.Group("")
	authed := router.Group("", middleware.Authenticate(gate))

	authHandler.RegisterRoutes(public, authed)
	transactionHandler.RegisterRoutes(authed)
	userHandler.RegisterRoutes(authed)
	stakeholderHandler.RegisterRoutes(authed)
	unitHandler.RegisterRoutes(authed)
	auditHandler.RegisterRoutes(authed)

	port := envOr("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
