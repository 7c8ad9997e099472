package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fundledger/internal/config"
	"fundledger/internal/database"
	"fundledger/internal/handlers"
	"fundledger/internal/logger"
	"fundledger/internal/middleware"
	"fundledger/internal/portfolio"
	"fundledger/internal/pricing"
	"fundledger/internal/services"
	"fundledger/internal/validator"

	_ "fundledger/internal/docs" // Import swagger docs
)

// @title           Fundledger API
// @version         1.0
// @description     Portfolio accounting for a pooled fund: ledger, live valuation, intraday P&L and client ownership.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

// routes groups the handlers mounted under /api/v1.
type routes struct {
	portfolio    *handlers.PortfolioHandler
	clients      *handlers.ClientHandler
	trades       *handlers.TradeHandler
	transactions *handlers.TransactionHandler
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	symbols, err := pricing.LoadSymbolMap(appConfig.AssetSymbolsFile)
	if err != nil {
		return fmt.Errorf("failed to load asset symbols: %w", err)
	}
	gateway := pricing.NewCoinGecko(&http.Client{}, symbols, pricing.Options{
		BaseURL:        appConfig.CoinGeckoBaseURL,
		APIKey:         appConfig.CoinGeckoAPIKey,
		Timeout:        appConfig.PriceRequestTimeout,
		HistoryRetries: appConfig.PriceHistoryRetries,
		RetryBackoff:   appConfig.PriceRetryBackoff,
	})
	engine := portfolio.NewEngine(gateway, appConfig.HistoryConcurrency)

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	ledgerService := services.NewLedgerService(db)
	clientService := services.NewClientService(db)
	portfolioService := services.NewPortfolioService(db, ledgerService, engine)

	validator.Register()

	router := newRouter(appConfig, routes{
		portfolio:    handlers.NewPortfolioHandler(portfolioService, auditService),
		clients:      handlers.NewClientHandler(clientService, auditService),
		trades:       handlers.NewTradeHandler(ledgerService, auditService),
		transactions: handlers.NewTransactionHandler(ledgerService),
	})

	log.Infow("tracking assets", "symbols", symbols.Symbols())
	log.Infof("Starting Fundledger server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

func newRouter(appConfig *config.Config, h routes) *gin.Engine {
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(appConfig.SlowRequestThreshold))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(appConfig.CORSAllowOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Portfolio routes
	portfolioRoutes := v1.Group("/portfolio")
	portfolioRoutes.GET("", h.portfolio.GetDashboard)
	portfolioRoutes.POST("/snapshots", h.portfolio.RecordSnapshot)
	portfolioRoutes.GET("/snapshots", h.portfolio.GetSnapshots)

	// Client routes
	clients := v1.Group("/clients")
	clients.GET("", h.clients.ListClients)
	clients.POST("", h.clients.CreateClient)
	clients.GET("/:id", h.clients.GetClient)
	clients.POST("/:id/funds", h.clients.ManageFunds)

	// Trade routes
	trades := v1.Group("/trades")
	trades.GET("", h.trades.ListTrades)
	trades.POST("", h.trades.RecordTrade)

	v1.GET("/transactions", h.transactions.GetTransactionLog)

	return router
}
