package api

import (
	"encoding/json"

	"commission-api/internal/commission"
	"commission-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one services/products line of a sale
type SaleItemRequest struct {
	Type             string          `json:"type" binding:"required"`
	Name             string          `json:"name" binding:"required"`
	Quantity         int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	AssignedEmployee json.RawMessage `json:"assignedEmployee,omitempty"`
}

// SaleRequest represents a services/products sale
type SaleRequest struct {
	MemberID string            `json:"memberId" binding:"required"`
	Items    []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateSale records a services/products sale and attributes commissions on
// each line that has employees assigned
func (h *Handler) CreateSale(c *gin.Context) {
	var req SaleRequest
	if !bindJSON(c, &req) {
		return
	}

	inputs := make([]services.SaleLineInput, len(req.Items))
	lines := make([]commission.SaleLine, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = services.SaleLineInput{
			Type:      item.Type,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		lines[i] = commission.SaleLine{Type: item.Type, AssignedEmployee: item.AssignedEmployee}
	}
	if err := h.processor.CheckSaleLines(lines); err != nil {
		fail(c, "Sale", err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.sales.Create(ctx, req.MemberID, inputs)
	if err != nil {
		fail(c, "Sale", err)
		return
	}

	outcome, err := h.processor.ApplyServicesProducts(ctx, result, lines)
	if err != nil {
		fail(c, "Sale commission", err)
		return
	}
	writeOutcome(c, outcome)
}
