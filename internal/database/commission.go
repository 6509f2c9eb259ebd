package database

import (
	"context"
	"time"

	"commission-api/internal/commission"
	"commission-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultListLimit = 200

// CommissionRepository is the gorm-backed employee commission ledger.
// Rows are only ever inserted.
type CommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates a repository on db
func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// CreateEmployeeCommission inserts one commission row
func (r *CommissionRepository) CreateEmployeeCommission(ctx context.Context, record *models.EmployeeCommission) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// WithinTransaction runs fn with a repository bound to a single transaction
func (r *CommissionRepository) WithinTransaction(ctx context.Context, fn func(commission.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CommissionRepository{db: tx})
	})
}

// ListEmployeeCommissions returns commission rows matching filter, newest first
func (r *CommissionRepository) ListEmployeeCommissions(ctx context.Context, filter models.CommissionFilter) ([]models.EmployeeCommission, error) {
	query := r.db.WithContext(ctx).Model(&models.EmployeeCommission{})
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.ItemType != "" {
		query = query.Where("item_type = ?", filter.ItemType)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var records []models.EmployeeCommission
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

// DailyBreakdown totals an employee's commission rows per calendar day in
// [from, to). Days are taken in from's location; days without rows are omitted.
func (r *CommissionRepository) DailyBreakdown(ctx context.Context, employeeID string, from, to time.Time) ([]models.DailyCommission, error) {
	var records []models.EmployeeCommission
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND created_at >= ? AND created_at < ?", employeeID, from, to).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	var days []models.DailyCommission
	for _, rec := range records {
		day := rec.CreatedAt.In(from.Location()).Format("2006-01-02")
		if len(days) == 0 || days[len(days)-1].Day != day {
			days = append(days, models.DailyCommission{
				Day:               day,
				PerformanceAmount: decimal.Zero,
				CommissionAmount:  decimal.Zero,
			})
		}
		d := &days[len(days)-1]
		d.Records++
		d.PerformanceAmount = d.PerformanceAmount.Add(rec.PerformanceAmount)
		d.CommissionAmount = d.CommissionAmount.Add(rec.CommissionAmount)
	}
	return days, nil
}
