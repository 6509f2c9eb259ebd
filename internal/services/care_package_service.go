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

// CarePackageService sells member care packages and records their consumption
type CarePackageService struct {
	db *gorm.DB
}

// NewCarePackageService creates a new care package service
func NewCarePackageService(db *gorm.DB) *CarePackageService {
	return &CarePackageService{db: db}
}

// CarePackagePurchase describes a package being sold to a member
type CarePackagePurchase struct {
	MemberID    string
	PackageName string
	Price       decimal.Decimal
	Sessions    int
}

// CarePackageUsage is one consumed line against a package
type CarePackageUsage struct {
	ServiceName string
	Sessions    int
}

// ConsumptionResults is the body a consumption step reports
type ConsumptionResults struct {
	Completed []uint `json:"completed"`
	Message   string `json:"message"`
}

// Purchase creates a member care package
func (s *CarePackageService) Purchase(ctx context.Context, in CarePackagePurchase) (commission.Purchase, error) {
	if in.Sessions <= 0 {
		return commission.Purchase{}, apperr.Validation("sessions must be positive")
	}
	if in.Price.IsNegative() {
		return commission.Purchase{}, apperr.Validation("price must not be negative")
	}

	mcp := &models.MemberCarePackage{
		MemberID:          in.MemberID,
		PackageName:       in.PackageName,
		Price:             in.Price,
		TotalSessions:     in.Sessions,
		RemainingSessions: in.Sessions,
	}
	if err := s.db.WithContext(ctx).Create(mcp).Error; err != nil {
		return commission.Purchase{}, fmt.Errorf("failed to create member care package: %w", err)
	}

	return commission.Purchase{
		ItemID: strconv.FormatUint(uint64(mcp.ID), 10),
		Payload: map[string]any{
			"success": true,
			"message": "Member care package created successfully",
			"data": map[string]any{
				"mcpId":              mcp.ID,
				"member_id":          mcp.MemberID,
				"package_name":       mcp.PackageName,
				"remaining_sessions": mcp.RemainingSessions,
			},
		},
	}, nil
}

// Consume deducts sessions from a package, writing one transaction log per
// usage line. Either every line is recorded or none is.
func (s *CarePackageService) Consume(ctx context.Context, packageID uint, usages []CarePackageUsage) (commission.Consumption, error) {
	if len(usages) == 0 {
		return commission.Consumption{}, apperr.Validation("at least one usage line is required")
	}
	total := 0
	for i, u := range usages {
		if u.Sessions <= 0 {
			return commission.Consumption{}, apperr.Validation("usages[%d]: sessions must be positive", i)
		}
		total += u.Sessions
	}

	var logIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mcp models.MemberCarePackage
		if err := tx.First(&mcp, packageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("member care package %d not found", packageID)
			}
			return err
		}

		// Conditional decrement so concurrent consumptions cannot overdraw.
		result := tx.Model(&models.MemberCarePackage{}).
			Where("id = ? AND remaining_sessions >= ?", packageID, total).
			Update("remaining_sessions", gorm.Expr("remaining_sessions - ?", total))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.Validation("member care package %d has fewer than %d sessions remaining", packageID, total)
		}

		for _, u := range usages {
			entry := &models.MemberCarePackageTransactionLog{
				MemberCarePackageID: packageID,
				ServiceName:         u.ServiceName,
				Sessions:            u.Sessions,
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
			logIDs = append(logIDs, entry.ID)
		}
		return nil
	})
	if err != nil {
		return commission.Consumption{}, err
	}

	message := fmt.Sprintf("Consumed %d item(s) from member care package %d", len(logIDs), packageID)
	return commission.Consumption{
		ItemIDs: formatIDs(logIDs),
		Message: message,
		Results: ConsumptionResults{Completed: logIDs, Message: message},
	}, nil
}

func formatIDs(ids []uint) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(uint64(id), 10)
	}
	return out
}
