package api

import (
	"net/http"

	"commission-api/internal/apperr"
	"commission-api/internal/commission"
	"commission-api/internal/database"
	"commission-api/internal/middleware"
	"commission-api/internal/response"
	"commission-api/internal/services"
	"commission-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the transaction and commission endpoints
type Handler struct {
	processor    *commission.Processor
	commissions  *database.CommissionRepository
	breakdowns   *services.BreakdownService
	carePackages *services.CarePackageService
	vouchers     *services.VoucherService
	sales        *services.SaleService
}

// NewHandler wires the upstream transaction services on db to the commission processor
func NewHandler(db *gorm.DB, commissions *database.CommissionRepository, processor *commission.Processor, breakdowns *services.BreakdownService) *Handler {
	return &Handler{
		processor:    processor,
		commissions:  commissions,
		breakdowns:   breakdowns,
		carePackages: services.NewCarePackageService(db),
		vouchers:     services.NewVoucherService(db),
		sales:        services.NewSaleService(db),
	}
}

// bindJSON decodes the request body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return false
	}
	return true
}

// writeOutcome sends the response the commission step decided on
func writeOutcome(c *gin.Context, outcome *commission.Outcome) {
	c.JSON(outcome.Status, outcome.Body)
}

// fail answers err, logging anything that is not the caller's fault
func fail(c *gin.Context, action string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Errorf("%s failed - request: %s, kind: %s, error: %v",
			action, middleware.GetRequestID(c), apperr.Kind(err), err)
	}
	response.AppErrorJSON(c, err)
}
