package router

import (
	"github.com/MukamaJ-2/crypto-vault/internal/cache"
	"github.com/MukamaJ-2/crypto-vault/internal/config"
	"github.com/MukamaJ-2/crypto-vault/internal/handler"
	"github.com/MukamaJ-2/crypto-vault/internal/middleware"
	"github.com/MukamaJ-2/crypto-vault/internal/state"
	"github.com/MukamaJ-2/crypto-vault/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires the HTTP API: stores, state manager, middleware and
// handlers.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	rows := store.NewGorm(db, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	snapshots := cache.New(cfg.Cache.Dir)
	manager := state.NewManager(rows, rows, snapshots, log)

	api := r.Group("/api")

	// no auth required
	authHandler := handler.NewAuthHandler(manager, log)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(rows),
		middleware.AuditMiddleware(db),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)

	profileHandler := handler.NewProfileHandler(manager, log)
	protected.POST("/profile", profileHandler.Update)

	planHandler := handler.NewPlanHandler(manager, log)
	protected.GET("/plans", planHandler.List)
	protected.POST("/plans", planHandler.Create)
	protected.GET("/plans/current", planHandler.Current)
	protected.POST("/plans/:id/deposit", planHandler.Deposit)
	protected.POST("/plans/:id/withdraw", planHandler.Withdraw)
	protected.GET("/stats/summary", planHandler.Stats)

	exportHandler := handler.NewExportHandler(rows, log)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
