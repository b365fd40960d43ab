package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-po/internal/document"
	"go-inventory-po/internal/handler"
	"go-inventory-po/internal/mailer"
	"go-inventory-po/internal/middleware"
	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/service"
	"go-inventory-po/internal/settings"
	"go-inventory-po/pkg/config"
	"go-inventory-po/pkg/database"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import uploads are capped separately; the server limit leaves room for multipart overhead.
const bodyLimit = 6 << 20

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "inventory-po"}).Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := context.Background()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, log.Zerolog())
	if err != nil {
		log.Error(ctx, "database connection failed", err)
		os.Exit(1)
	}
	if cfg.DB.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			log.Error(ctx, "migration failed", err)
			os.Exit(1)
		}
	}
	if err := repository.SeedCategories(ctx, db); err != nil {
		log.Error(ctx, "failed to seed default categories", err)
	}

	// 3. Runtime settings: env values overlaid by the settings file
	provider := settings.NewProvider(cfg.Storage.SettingsFile, settings.EmailSettings{
		User:     cfg.Email.User,
		Pass:     cfg.Email.Pass,
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		FromName: cfg.Email.FromName,
	})
	if err := provider.Reload(); err != nil {
		log.Error(ctx, "failed to read settings file, using environment defaults", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// 4. Dependency Injection (Wiring Layers)
	categoryRepo := repository.NewCategoryRepo(db)
	itemRepo := repository.NewItemRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	poRepo := repository.NewPurchaseOrderRepo(db)
	vendorRepo := repository.NewVendorRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	invService := service.NewInventoryService(db, itemRepo, txRepo, categoryRepo, poRepo, log, m)
	categoryService := service.NewCategoryService(categoryRepo, log)
	vendorService := service.NewVendorService(db, vendorRepo, poRepo, log)
	poService := service.NewPurchaseOrderService(db, poRepo, vendorRepo, itemRepo, log)
	dashService := service.NewDashboardService(dashRepo, txRepo)
	excelService := service.NewExcelService(invService, itemRepo, txRepo, categoryRepo, log, m)
	docService := service.NewDocumentService(
		poRepo,
		document.NewRenderer(cfg.Document.CompanyName, cfg.Document.FontPath),
		mailer.NewSMTPSender(cfg.Email.Timeout),
		provider,
		cfg.Storage.UploadDir,
		log,
		m,
	)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: handler.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS
	app.Use(requestid.New())
	app.Use(middleware.Metrics(m))
	app.Use(middleware.RequestLogger(log))

	// 6. Routes
	handler.Register(app, &handler.Handlers{
		Health:        handler.NewHealthHandler(db),
		Category:      handler.NewCategoryHandler(categoryService),
		Inventory:     handler.NewInventoryHandler(invService),
		Dashboard:     handler.NewDashboardHandler(dashService),
		Excel:         handler.NewExcelHandler(excelService, cfg.Storage.ImportMaxBytes),
		PurchaseOrder: handler.NewPurchaseOrderHandler(poService, docService),
		Vendor:        handler.NewVendorHandler(vendorService),
		Settings:      handler.NewSettingsHandler(provider, docService),
		Metrics:       adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	})

	// 7. Graceful Shutdown
	go func() {
		log.InfoFields(ctx, "server starting", map[string]any{"port": cfg.App.Port, "db_driver": cfg.DB.Driver})
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Error(ctx, "server stopped", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error(ctx, "server forced to shutdown", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info(ctx, "server exited")
}
