package api

import (
	"commission-api/internal/commission"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MVPurchaseRequest represents a member voucher purchase
type MVPurchaseRequest struct {
	MemberID    string          `json:"memberId" binding:"required"`
	VoucherName string          `json:"voucherName" binding:"required"`
	FaceValue   decimal.Decimal `json:"faceValue"`
	commission.AssignmentRequest
}

// MVConsumeRequest represents a deduction from a member voucher
type MVConsumeRequest struct {
	VoucherID   uint            `json:"voucherId" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	commission.AssignmentRequest
}

// PurchaseVoucher sells a member voucher, attributing commissions when
// employees are assigned
func (h *Handler) PurchaseVoucher(c *gin.Context) {
	var req MVPurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.processor.CheckMV(req.AssignmentRequest); err != nil {
		fail(c, "Voucher purchase", err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.vouchers.Purchase(ctx, req.MemberID, req.VoucherName, req.FaceValue)
	if err != nil {
		fail(c, "Voucher purchase", err)
		return
	}

	outcome, err := h.processor.ApplyMV(ctx, result, req.AssignmentRequest)
	if err != nil {
		fail(c, "Voucher commission", err)
		return
	}
	writeOutcome(c, outcome)
}

// ConsumeVoucher deducts from a member voucher, attributing commissions to
// the transaction log row when employees are assigned
func (h *Handler) ConsumeVoucher(c *gin.Context) {
	var req MVConsumeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.processor.CheckMV(req.AssignmentRequest); err != nil {
		fail(c, "Voucher consumption", err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.vouchers.Consume(ctx, req.VoucherID, req.Amount, req.Description)
	if err != nil {
		fail(c, "Voucher consumption", err)
		return
	}

	outcome, err := h.processor.ApplyMV(ctx, result, req.AssignmentRequest)
	if err != nil {
		fail(c, "Voucher consumption commission", err)
		return
	}
	writeOutcome(c, outcome)
}
