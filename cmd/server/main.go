// Auto Arbitrage API
// @title Auto Arbitrage API
// @version 1.0
// @description Aggregates institutional vehicle auction listings and tracks price history
// @host localhost:8080
// @BasePath /

package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	_ "autoarbitrage/docs"
	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/cache"
	"autoarbitrage/internal/config"
	"autoarbitrage/internal/database"
	"autoarbitrage/internal/handlers"
	"autoarbitrage/internal/middleware"
	"autoarbitrage/internal/pipeline"
	"autoarbitrage/internal/runner"
	"autoarbitrage/internal/scraper"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sessions := browser.NewManager(browser.Options{
		Headless:      cfg.Headless,
		WaitTimeout:   cfg.WaitTimeout,
		CanaryURL:     cfg.CanaryURL,
		ScreenshotDir: cfg.ScreenshotDir,
	})

	run := runner.New(db, pipeline.KeepAll,
		scraper.NewClickar(sessions),
		scraper.NewAyvens(sessions),
	)

	resultCache := cache.New(cfg.CacheFile, cfg.CacheTTL)

	// Initialize Gin router
	r := gin.Default()

	r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	})

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key"}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Limit(10), 20)))

	authHandler := handlers.NewAuthHandler(db)
	vehicleHandler := handlers.NewVehicleHandler(db)
	scrapeHandler := handlers.NewScrapeHandler(db, run, cfg.Credentials, resultCache)

	r.Use(authHandler.AuthMiddleware())

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", scrapeHandler.Health)
		api.GET("/vehicles", vehicleHandler.ListVehicles)
		api.GET("/vehicles/:plate", vehicleHandler.GetVehicleHistory)
		api.GET("/auctions", vehicleHandler.ListAuctions)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		watchlist := api.Group("/watchlist", authHandler.RequireAuth())
		{
			watchlist.GET("", vehicleHandler.GetWatchlist)
			watchlist.POST("/:plate", vehicleHandler.AddToWatchlist)
			watchlist.DELETE("/:plate", vehicleHandler.RemoveFromWatchlist)
		}

		admin := api.Group("/admin", middleware.AdminKeyMiddleware(cfg.AdminKey))
		{
			admin.POST("/scrape", middleware.ScrapeCooldownMiddleware(cfg.ScrapeCooldown), scrapeHandler.TriggerScrape)
			admin.DELETE("/scrape", scrapeHandler.CancelScrape)
			admin.GET("/scrape/status", scrapeHandler.ScrapeStatus)
		}
	}

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
