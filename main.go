package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-ledger/src/auth"
	"stock-ledger/src/config"
	"stock-ledger/src/handlers"
	"stock-ledger/src/models"
	"stock-ledger/src/repositories"
	"stock-ledger/src/routes"
	"stock-ledger/src/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Category{},
		&models.InboundMovement{},
		&models.OutboundMovement{},
		&models.Balance{},
		&models.RecordHistory{},
	); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	if err := seedSampleData(db, logger); err != nil {
		logger.Warn("Failed to seed sample data", zap.Error(err))
	}

	repo := &repositories.LedgerRepository{DB: db}
	reconciler := &services.BalanceReconciler{}
	diagnostics := &services.Diagnostics{Log: logger}

	inboundService := &services.InboundService{
		DB:         db,
		Repo:       repo,
		Reconciler: reconciler,
		Log:        logger,
	}
	outboundService := &services.OutboundService{
		DB:         db,
		Repo:       repo,
		Reconciler: reconciler,
		Log:        logger,
	}
	queryService := &services.QueryService{
		DB:   db,
		Repo: repo,
		Diag: diagnostics,
		Log:  logger,
	}

	handler := &handlers.LedgerHandler{
		Inbound:  inboundService,
		Outbound: outboundService,
		Query:    queryService,
		Log:      logger,
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(auth.RequestID())
	router.Use(auth.CORS())
	router.Use(auth.RequestLogger(logger))

	api := router.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	routes.RegisterLedgerRoutes(api, handler, cfg.Auth)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting stock-ledger", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func seedSampleData(db *gorm.DB, logger *zap.Logger) error {
	var tenantCount int64
	db.Model(&models.Tenant{}).Count(&tenantCount)

	if tenantCount == 0 {
		tenants := []models.Tenant{
			{ID: mustParseUUID("b159a190-e72f-4295-853c-ddbbe19fa6f6"), Name: "Harbor Warehousing", Code: "HW-001"},
			{ID: mustParseUUID("2003eacc-5f39-4f3d-94d7-6e01c1bebd6a"), Name: "Northline Trading", Code: "NT-001"},
		}

		for _, tenant := range tenants {
			if err := db.FirstOrCreate(&tenant, "id = ?", tenant.ID).Error; err != nil {
				return err
			}
		}
		logger.Info("Seeded sample tenants", zap.Int("count", len(tenants)))
	}

	var categoryCount int64
	db.Model(&models.Category{}).Count(&categoryCount)

	if categoryCount == 0 {
		categories := []models.Category{
			{TenantID: mustParseUUID("b159a190-e72f-4295-853c-ddbbe19fa6f6"), Code: "RESIN", Name: "Polymer Resin"},
			{TenantID: mustParseUUID("b159a190-e72f-4295-853c-ddbbe19fa6f6"), Code: "FERT", Name: "Fertilizer"},
			{TenantID: mustParseUUID("2003eacc-5f39-4f3d-94d7-6e01c1bebd6a"), Code: "GRAIN", Name: "Grain"},
		}

		for _, category := range categories {
			if err := db.FirstOrCreate(&category, "tenant_id = ? AND code = ?", category.TenantID, category.Code).Error; err != nil {
				return err
			}
		}
		logger.Info("Seeded sample categories", zap.Int("count", len(categories)))
	}

	return nil
}

func mustParseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}
