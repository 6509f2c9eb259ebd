package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all routes. mw is applied to the /api group.
func SetupRoutes(r *gin.Engine, h *Handler, serviceName string, mw ...gin.HandlerFunc) {
	// API route group
	api := r.Group("/api")
	api.Use(mw...)
	{
		// Member care package transactions
		mcp := api.Group("/mcp")
		{
			mcp.POST("/purchase", h.PurchaseCarePackage)
			mcp.POST("/consume", h.ConsumeCarePackage)
		}

		// Member voucher transactions
		mv := api.Group("/mv")
		{
			mv.POST("/purchase", h.PurchaseVoucher)
			mv.POST("/consume", h.ConsumeVoucher)
		}

		// Services/products sales
		api.POST("/sales", h.CreateSale)

		// Commission ledger
		commissions := api.Group("/commissions")
		{
			commissions.GET("", h.ListCommissions)
			commissions.GET("/breakdown", h.GetCommissionBreakdown)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})
}
