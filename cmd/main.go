package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mesa/internal/caching"
	"mesa/internal/config"
	"mesa/internal/handlers"
	"mesa/internal/jobs/background"
	"mesa/internal/logger"
	"mesa/internal/metrics"
	"mesa/internal/middleware"
	"mesa/internal/repositories"
	"mesa/internal/services"
	"mesa/pkg/database"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
)

const (
	accessTokenTTLSeconds  = 15 * 60
	refreshTokenTTLSeconds = 30 * 24 * 60 * 60
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "mesa",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" && cfg.JWKSURL == "" {
		jwtSecret = random.String(32)
		log.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	storageSvc, err := services.NewStorageService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatal("failed to create storage client", zap.Error(err))
	}
	if err := storageSvc.EnsureBucketExists(ctx, cfg.DocumentBucket); err != nil {
		log.Warn("could not ensure document bucket", zap.String("bucket", cfg.DocumentBucket), zap.Error(err))
	}

	httpMetrics := metrics.NewHTTPMetrics("mesa")

	// Repositories
	businessRepo := repositories.NewBusinessRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	supplierRepo := repositories.NewSupplierRepo(pool)
	itemRepo := repositories.NewItemRepo(pool)
	txnRepo := repositories.NewTransactionRepo(pool)
	alertRepo := repositories.NewAlertRepo(pool)
	staffRepo := repositories.NewStaffRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, cacheSvc, log, jwtSecret, accessTokenTTLSeconds, refreshTokenTTLSeconds)
	alertSvc := services.NewAlertService(alertRepo, itemRepo, cacheSvc, cfg.Alerts, httpMetrics, log)
	inventorySvc := services.NewInventoryService(pool, itemRepo, txnRepo, alertRepo, alertSvc, cacheSvc, cfg.Alerts, httpMetrics, log)
	supplierSvc := services.NewSupplierService(supplierRepo)
	staffSvc := services.NewStaffService(staffRepo)
	complianceSvc := services.NewComplianceService(staffRepo, documentRepo, cfg.Alerts)
	documentSvc := services.NewDocumentService(documentRepo, staffRepo, storageSvc, cfg.DocumentBucket, log)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, businessRepo)
	itemHandlers := handlers.NewItemHandlers(inventorySvc)
	txnHandlers := handlers.NewTransactionHandlers(inventorySvc)
	alertHandlers := handlers.NewAlertHandlers(alertSvc)
	statsHandlers := handlers.NewStatsHandlers(inventorySvc)
	categoryHandlers := handlers.NewCategoryHandlers(categoryRepo)
	supplierHandlers := handlers.NewSupplierHandlers(supplierSvc)
	staffHandlers := handlers.NewStaffHandlers(staffSvc, complianceSvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storageSvc, cfg.DocumentBucket)

	jwtMiddleware, err := middleware.JWTMiddleware(userRepo, jwtSecret, cfg.JWKSURL)
	if err != nil {
		log.Fatal("failed to initialize JWT middleware", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	protected := v1.Group("")
	protected.Use(jwtMiddleware)

	protected.GET("/me", authHandlers.Me)

	protected.POST("/inventory/items", itemHandlers.CreateItem)
	protected.GET("/inventory/items", itemHandlers.ListItems)
	protected.GET("/inventory/items/:id", itemHandlers.GetItem)
	protected.PUT("/inventory/items/:id", itemHandlers.UpdateItem)
	protected.DELETE("/inventory/items/:id", itemHandlers.DeleteItem)
	protected.GET("/inventory/items/:id/ledger", itemHandlers.CheckItemLedger)
	protected.GET("/inventory/search", itemHandlers.SearchItems)

	protected.POST("/inventory/transactions", txnHandlers.RecordTransaction)
	protected.GET("/inventory/transactions", txnHandlers.ListTransactions)
	protected.GET("/inventory/transactions/:id", txnHandlers.GetTransaction)

	protected.GET("/inventory/alerts", alertHandlers.ListAlerts)
	protected.POST("/inventory/alerts/:id/resolve", alertHandlers.ResolveAlert)
	protected.POST("/inventory/alerts/scan", alertHandlers.ScanAlerts)

	protected.GET("/inventory/stats", statsHandlers.GetStats)

	protected.GET("/categories", categoryHandlers.ListCategories)
	protected.POST("/categories", categoryHandlers.CreateCategory)
	protected.GET("/categories/:id", categoryHandlers.GetCategory)
	protected.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	protected.GET("/suppliers", supplierHandlers.ListSuppliers)
	protected.POST("/suppliers", supplierHandlers.CreateSupplier)
	protected.GET("/suppliers/:id", supplierHandlers.GetSupplier)
	protected.PUT("/suppliers/:id", supplierHandlers.UpdateSupplier)
	protected.DELETE("/suppliers/:id", supplierHandlers.DeleteSupplier)

	protected.GET("/staff", staffHandlers.ListStaff)
	protected.POST("/staff", staffHandlers.CreateStaff)
	protected.GET("/staff/:id", staffHandlers.GetStaff)
	protected.PUT("/staff/:id", staffHandlers.UpdateStaff)
	protected.DELETE("/staff/:id", staffHandlers.DeleteStaff)
	protected.GET("/staff/:id/compliance", staffHandlers.GetStaffCompliance)
	protected.GET("/compliance/overview", staffHandlers.GetComplianceOverview)

	protected.POST("/staff/:id/documents", documentHandlers.UploadDocument)
	protected.GET("/staff/:id/documents", documentHandlers.ListStaffDocuments)
	protected.GET("/staff/:id/documents/:docId/url", documentHandlers.GetDocumentURL)
	protected.PUT("/staff/:id/documents/:docId", documentHandlers.UpdateDocumentMetadata)
	protected.DELETE("/staff/:id/documents/:docId", documentHandlers.DeleteDocument)

	scheduler, err := background.NewJobScheduler(alertSvc, authSvc, businessRepo, log)
	if err != nil {
		log.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil {
			log.Info("http server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("scheduler shutdown failed", zap.Error(err))
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
