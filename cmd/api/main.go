package main

import (
	"fmt"
	"net/http"
	"os"

	"cryptofolio/internal/config"
	"cryptofolio/internal/database"
	"cryptofolio/internal/handlers"
	"cryptofolio/internal/logger"
	"cryptofolio/internal/middleware"
	"cryptofolio/internal/prices"
	"cryptofolio/internal/scheduler"
	"cryptofolio/internal/services"
	"cryptofolio/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cryptofolio/internal/docs" // Import swagger docs
)

// @title           Cryptofolio API
// @version         1.0
// @description     Cryptofolio is a cryptocurrency trading demo: users buy and sell coins at live prices and track their portfolio.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Build the resilient price fetcher from configuration
	fetcher := newFetcher(appConfig)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	coinService := services.NewCoinService(db, fetcher)
	ledgerService := services.NewLedgerService(db, coinService, fetcher)
	walletService := services.NewWalletService(ledgerService, fetcher)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	coinHandler := handlers.NewCoinHandler(coinService)
	priceHandler := handlers.NewPriceHandler(fetcher)
	orderHandler := handlers.NewOrderHandler(ledgerService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(userService)

	// Background cache warmer
	jobs := scheduler.New()
	if appConfig.PriceRefreshSpec != "" {
		refresher := services.NewPriceRefresher(coinService, fetcher)
		if err := jobs.AddJob(appConfig.PriceRefreshSpec, refresher); err != nil {
			return fmt.Errorf("failed to schedule price refresh: %w", err)
		}
		jobs.Start()
		defer jobs.Stop()
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Market data
	protected.GET("/coins", coinHandler.GetMarket)
	protected.GET("/prices", priceHandler.GetPrices)
	protected.GET("/prices/:symbol", priceHandler.GetPrice)

	// Trading
	orders := protected.Group("/orders")
	orders.POST("/buy", orderHandler.Buy)
	orders.POST("/sell", orderHandler.Sell)

	// Ledger
	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.List)
	transactions.GET("/export", transactionHandler.Export)

	// Wallet
	protected.GET("/wallet", walletHandler.GetWallet)

	// Admin panel
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	log.Infof("Starting Cryptofolio backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// newFetcher builds the quote source chain from configuration. With a direct
// upstream configured the chain is direct, then its CORS proxies in order,
// then CoinGecko; otherwise CoinGecko is the primary. The fetcher degrades
// to synthetic quotes when the whole chain fails.
func newFetcher(cfg *config.Config) *prices.Fetcher {
	httpClient := &http.Client{Timeout: cfg.PriceTimeout}

	var sources []prices.Source
	if cfg.PriceAPIURL != "" {
		sources = append(sources, prices.NewDirectSource(httpClient, cfg.PriceAPIURL))
		for _, proxy := range cfg.PriceProxyURLs {
			sources = append(sources, prices.NewProxySource(httpClient, proxy, cfg.PriceAPIURL))
		}
	}
	sources = append(sources, prices.NewCoinGeckoSource(httpClient, cfg.CoinGeckoURL))

	return prices.NewFetcher(sources, prices.FetcherOptions{
		CacheTTL:    cfg.PriceCacheTTL,
		MaxAttempts: cfg.PriceMaxAttempts,
		Timeout:     cfg.PriceTimeout,
	})
}
