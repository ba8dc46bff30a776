package routes

import (
	"github.com/gin-gonic/gin"

	"stock-ledger/src/auth"
	"stock-ledger/src/config"
	"stock-ledger/src/handlers"
)

func RegisterLedgerRoutes(api *gin.RouterGroup, handler *handlers.LedgerHandler, authCfg config.AuthConfig) {
	// Agent endpoints (API key)
	agent := api.Group("/agent", auth.AgentAPIKey(authCfg.AgentAPIKey))
	agent.POST("/inbound", handler.CreateInbound)
	agent.PUT("/inbound/:id", handler.UpdateInbound)
	agent.GET("/inbound", handler.ListInbound)
	agent.GET("/inbound/:id", handler.GetInbound)

	// Admin endpoints (JWT)
	admin := api.Group("/admin", auth.AdminJWT(authCfg.JWTSecret))
	admin.POST("/inbound", handler.CreateInbound)
	admin.PUT("/inbound/:id", handler.UpdateInbound)
	admin.GET("/inbound", handler.ListInbound)
	admin.GET("/inbound/:id", handler.GetInbound)
	admin.POST("/inbound/:id/approve", handler.ApproveInbound)
	admin.POST("/inbound/:id/reject", handler.RejectInbound)
	admin.POST("/inbound/import", handler.ImportInbound)

	admin.POST("/outbound", handler.CreateOutbound)

	admin.GET("/available", handler.ListAvailable)
	admin.GET("/ledger", handler.GetLedger)
	admin.GET("/balance", handler.GetBalance)
	admin.GET("/history", handler.GetHistory)
	admin.GET("/stats", handler.GetStats)
}
