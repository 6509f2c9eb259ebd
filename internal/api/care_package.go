package api

import (
	"commission-api/internal/commission"
	"commission-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MCPPurchaseRequest represents a member care package purchase
type MCPPurchaseRequest struct {
	MemberID    string          `json:"memberId" binding:"required"`
	PackageName string          `json:"packageName" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Sessions    int             `json:"sessions" binding:"required,gt=0"`
	commission.AssignmentRequest
}

// MCPUsage is one consumed line of a member care package
type MCPUsage struct {
	ServiceName string `json:"serviceName" binding:"required"`
	Sessions    int    `json:"sessions" binding:"required,gt=0"`
}

// MCPConsumeRequest represents a member care package consumption
type MCPConsumeRequest struct {
	PackageID uint       `json:"packageId" binding:"required"`
	Items     []MCPUsage `json:"items" binding:"required,min=1,dive"`
	commission.AssignmentRequest
}

// PurchaseCarePackage sells a care package and attributes commissions on it
func (h *Handler) PurchaseCarePackage(c *gin.Context) {
	var req MCPPurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.processor.CheckMCP(req.AssignmentRequest); err != nil {
		fail(c, "Care package purchase", err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.carePackages.Purchase(ctx, services.CarePackagePurchase{
		MemberID:    req.MemberID,
		PackageName: req.PackageName,
		Price:       req.Price,
		Sessions:    req.Sessions,
	})
	if err != nil {
		fail(c, "Care package purchase", err)
		return
	}

	outcome, err := h.processor.ApplyMCP(ctx, result, req.AssignmentRequest)
	if err != nil {
		fail(c, "Care package commission", err)
		return
	}
	writeOutcome(c, outcome)
}

// ConsumeCarePackage deducts sessions from a care package and attributes
// commissions on every consumed line
func (h *Handler) ConsumeCarePackage(c *gin.Context) {
	var req MCPConsumeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.processor.CheckMCP(req.AssignmentRequest); err != nil {
		fail(c, "Care package consumption", err)
		return
	}

	usages := make([]services.CarePackageUsage, len(req.Items))
	for i, item := range req.Items {
		usages[i] = services.CarePackageUsage{ServiceName: item.ServiceName, Sessions: item.Sessions}
	}

	ctx := c.Request.Context()
	result, err := h.carePackages.Consume(ctx, req.PackageID, usages)
	if err != nil {
		fail(c, "Care package consumption", err)
		return
	}

	outcome, err := h.processor.ApplyMCP(ctx, result, req.AssignmentRequest)
	if err != nil {
		fail(c, "Care package consumption commission", err)
		return
	}
	writeOutcome(c, outcome)
}
