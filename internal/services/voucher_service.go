package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"commission-api/internal/apperr"
	"commission-api/internal/commission"
	"commission-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherService sells member vouchers and deducts from their balance
type VoucherService struct {
	db *gorm.DB
}

// NewVoucherService creates a new voucher service
func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

// Purchase creates a member voucher holding faceValue
func (s *VoucherService) Purchase(ctx context.Context, memberID, voucherName string, faceValue decimal.Decimal) (commission.Purchase, error) {
	if !faceValue.IsPositive() {
		return commission.Purchase{}, apperr.Validation("face value must be positive")
	}

	mv := &models.MemberVoucher{
		MemberID:    memberID,
		VoucherName: voucherName,
		FaceValue:   faceValue,
		Balance:     faceValue,
	}
	if err := s.db.WithContext(ctx).Create(mv).Error; err != nil {
		return commission.Purchase{}, fmt.Errorf("failed to create member voucher: %w", err)
	}

	return commission.Purchase{
		ItemID: strconv.FormatUint(uint64(mv.ID), 10),
		Payload: map[string]any{
			"success": true,
			"message": "Member voucher created successfully",
			"data": map[string]any{
				"voucher_id":   mv.ID,
				"member_id":    mv.MemberID,
				"voucher_name": mv.VoucherName,
				"balance":      mv.Balance,
			},
		},
	}, nil
}

// Consume deducts amount from a voucher and writes the transaction log row
// that commissions on this usage are attributed to.
func (s *VoucherService) Consume(ctx context.Context, voucherID uint, amount decimal.Decimal, description string) (commission.Consumption, error) {
	if !amount.IsPositive() {
		return commission.Consumption{}, apperr.Validation("amount must be positive")
	}

	var entry models.MemberVoucherTransactionLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mv models.MemberVoucher
		if err := tx.First(&mv, voucherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("member voucher %d not found", voucherID)
			}
			return err
		}

		result := tx.Model(&models.MemberVoucher{}).
			Where("id = ? AND balance >= ?", voucherID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.Validation("member voucher %d balance is below %s", voucherID, amount.StringFixed(2))
		}

		if err := tx.First(&mv, voucherID).Error; err != nil {
			return err
		}

		entry = models.MemberVoucherTransactionLog{
			MemberVoucherID: voucherID,
			Description:     description,
			Amount:          amount,
			BalanceAfter:    mv.Balance,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return commission.Consumption{}, err
	}

	message := fmt.Sprintf("Deducted %s from member voucher %d", amount.StringFixed(2), voucherID)
	return commission.Consumption{
		ItemIDs: formatIDs([]uint{entry.ID}),
		Message: message,
		Results: ConsumptionResults{Completed: []uint{entry.ID}, Message: message},
	}, nil
}
