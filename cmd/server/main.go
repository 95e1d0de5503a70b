package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"buyback-pos/config"
	"buyback-pos/internal/backend"
	"buyback-pos/internal/handler"
	"buyback-pos/internal/middleware"
	"buyback-pos/internal/repository"
	"buyback-pos/internal/service"
	"buyback-pos/internal/utils"
	"buyback-pos/internal/view"
	"buyback-pos/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load Configuration
	cfg := config.LoadConfig()

	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.Server.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// 2. Connect to the operator database
	db, err := database.Connect(cfg.Database, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Database handle unavailable: %v", err)
	}

	// 3. Auto-Migrate and seed
	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully.")

	if err := database.SeedRolesAndAdmin(db, cfg.Defaults); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// 4. Wire stores, backend client and services
	operators := repository.NewOperatorStore(db)
	audit := repository.NewAuditStore(db)
	tokens := utils.NewTokenIssuer(cfg.Server.JWTSecret, cfg.Server.JWTExpirationHours)
	api := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)

	catalog := service.NewCatalogService(api, audit, logger)
	purchases := service.NewPurchaseService(api, cfg.Hardware, audit, logger)

	engine, err := view.New(view.Funcs(api))
	if err != nil {
		log.Fatalf("Templates failed to load: %v", err)
	}

	// 5. Initialize Router
	r := gin.Default()
	r.HTMLRender = engine
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.StaticFS("/static", http.FS(view.Static()))

	// 6. Setup Routes
	pages := handler.NewRenderer(cfg.Site, cfg.Defaults.PerPage, logger)
	handlers := &handler.Handlers{
		Public:        handler.NewPublicHandler(cfg.Site, api, handler.PingFunc(sqlDB.PingContext)),
		Auth:          handler.NewAuthHandler(pages, operators, tokens, cfg.IsProduction()),
		Admin:         handler.NewAdminHandler(pages, operators, audit),
		Products:      handler.NewProductHandler(pages, api, catalog),
		Inventory:     handler.NewInventoryHandler(pages, api, catalog),
		Customers:     handler.NewCustomerHandler(pages, api),
		Purchase:      handler.NewPurchaseHandler(pages, api, purchases),
		PurchaseOrder: handler.NewPurchaseOrderHandler(pages, api),
		Receipts:      handler.NewReceiptHandler(pages, api),
	}
	handlers.Register(r, tokens)

	// 7. Start Server
	port := cfg.Server.Port
	log.Printf("Server starting on port %s, backend %s", port, cfg.Backend.BaseURL)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
