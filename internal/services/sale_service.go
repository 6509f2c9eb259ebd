package services

import (
	"context"
	"fmt"

	"commission-api/internal/apperr"
	"commission-api/internal/commission"
	"commission-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService records services/products sales
type SaleService struct {
	db *gorm.DB
}

// NewSaleService creates a new sale service
func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db}
}

// SaleLineInput is one line of a sale
type SaleLineInput struct {
	Type      string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Create writes one sale item per line. The returned ids are in line order.
func (s *SaleService) Create(ctx context.Context, memberID string, lines []SaleLineInput) (commission.Sale, error) {
	if len(lines) == 0 {
		return commission.Sale{}, apperr.Validation("at least one item is required")
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return commission.Sale{}, apperr.Validation("items[%d]: quantity must be positive", i)
		}
	}

	ids := make([]uint, 0, len(lines))
	total := decimal.Zero
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			item := &models.SaleItem{
				MemberID:  memberID,
				Type:      line.Type,
				Name:      line.Name,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create sale item: %w", err)
			}
			ids = append(ids, item.ID)
			total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		return nil
	})
	if err != nil {
		return commission.Sale{}, err
	}

	return commission.Sale{
		CreatedItemIDs: formatIDs(ids),
		Payload: map[string]any{
			"success": true,
			"message": "Sale created successfully",
			"data": map[string]any{
				"createdItemIds": ids,
				"total":          total.StringFixed(2),
			},
		},
	}, nil
}
