package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/datphandbplus/financial-be-sub001/internal/account"
	"github.com/datphandbplus/financial-be-sub001/internal/config"
	"github.com/datphandbplus/financial-be-sub001/internal/core/handler"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
	"github.com/datphandbplus/financial-be-sub001/internal/storage"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting finance service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	registry := tenant.NewRegistry(cfg.Database, zapLogger)
	rdb := initRedis(cfg.Redis)

	store, err := storage.New(cfg.MinIO)
	if err != nil {
		zapLogger.Fatal("Failed to connect object store", zap.Error(err))
	}

	accounts := account.NewClient(cfg.Account, rdb, zapLogger)
	services := service.NewServices(zapLogger)
	handlers := handler.NewHandlers(registry, services, store, zapLogger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg, accounts)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, accounts *account.Client) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.Auth(cfg.JWT.Secret, accounts))
	{
		projects := authorized.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.POST("", h.Project.Create)
			projects.GET("/:id", h.Project.Get)
			projects.POST("/:id/submit", h.Project.SubmitQuotation)
			projects.PUT("/:id/reassign", h.Project.Reassign)
			projects.GET("/:id/waiting-actions", h.Project.WaitingActions)
		}

		quotations := authorized.Group("/quotation-approvers")
		{
			quotations.PUT("/:approverId", h.Project.DecideQuotation)
		}

		lines := authorized.Group("/lines")
		{
			lines.GET("/sum", h.Project.SumLines)
			lines.GET("/sum-each", h.Project.SumLinesPerProject)
		}
		authorized.DELETE("/sheets/:sheetId", h.Project.DeleteSheet)

		costs := authorized.Group("/costs")
		{
			costs.GET("/sum", h.Cost.Sum)
			costs.GET("/sum-each", h.Cost.SumPerProject)
			costs.POST("/modify", h.Cost.Modify)
			costs.GET("/modifications", h.Cost.ListModifications)
			costs.GET("/report", h.Cost.ExportReport)
		}
		authorized.PUT("/cost-modifications/:id",
			middleware.RequireCapability(func(cap role.Capability) bool {
				return cap.IsProcurementManager || cap.IsCEO
			}),
			h.Cost.ResolveModification)

		purchaseOrders := authorized.Group("/purchase-orders")
		{
			purchaseOrders.GET("", h.PO.List)
			purchaseOrders.GET("/:id", h.PO.Get)
			purchaseOrders.POST("/:id/attachment", h.PO.UploadAttachment)
			purchaseOrders.GET("/:id/attachment", h.PO.DownloadAttachment)
		}
		authorized.PUT("/purchase-order-approvers/:approverId", h.PO.UpdateApprover)

		variationOrders := authorized.Group("/variation-orders")
		{
			variationOrders.GET("", h.VO.List)
		}
		authorized.PUT("/variation-order-approvers/:approverId", h.VO.UpdateApprover)

		billPlans := authorized.Group("/bill-plans")
		{
			billPlans.GET("", h.Plan.ListBillPlans)
			billPlans.POST("", h.Plan.AddBillPlan)
			billPlans.PUT("/:id", h.Plan.UpdateBillPlan)
		}
		paymentPlans := authorized.Group("/payment-plans")
		{
			paymentPlans.GET("", h.Plan.ListPaymentPlans)
			paymentPlans.POST("", h.Plan.AddPaymentPlan)
			paymentPlans.PUT("/:id", h.Plan.UpdatePaymentPlan)
		}

		clients := authorized.Group("/clients")
		{
			clients.GET("", h.Reference.ListClients)
			clients.POST("", h.Reference.CreateClient)
			clients.GET("/:id", h.Reference.GetClient)
			clients.PUT("/:id", h.Reference.UpdateClient)
			clients.DELETE("/:id", h.Reference.DeleteClient)
		}
		vendors := authorized.Group("/vendors")
		{
			vendors.GET("", h.Reference.ListVendors)
			vendors.POST("", h.Reference.CreateVendor)
			vendors.GET("/:id", h.Reference.GetVendor)
			vendors.PUT("/:id", h.Reference.UpdateVendor)
			vendors.DELETE("/:id", h.Reference.DeleteVendor)
		}
		authorized.GET("/users", h.Reference.ListUsers)
	}
}
