package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemType identifies the ledger row a commission is attributed to.
type ItemType string

const (
	ItemTypeMemberVouchers                   ItemType = "member_vouchers"
	ItemTypeMemberCarePackages               ItemType = "member_care_packages"
	ItemTypeProducts                         ItemType = "products"
	ItemTypeServices                         ItemType = "services"
	ItemTypeMemberCarePackageTransactionLogs ItemType = "member_care_package_transaction_logs"
	ItemTypeMemberVoucherTransactionLogs     ItemType = "member_voucher_transaction_logs"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeMemberVouchers, ItemTypeMemberCarePackages, ItemTypeProducts, ItemTypeServices,
		ItemTypeMemberCarePackageTransactionLogs, ItemTypeMemberVoucherTransactionLogs:
		return true
	}
	return false
}

// EmployeeCommission is a write-once ledger row attributing performance and
// commission amounts to one employee for one item.
type EmployeeCommission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      uuid.UUID `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	BatchID   uuid.UUID `json:"batch_id" gorm:"type:uuid;index;not null"` // shared by every row of one attribution run
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	EmployeeID        string          `json:"employee_id" gorm:"size:64;not null;index"`
	PerformanceRate   decimal.Decimal `json:"performance_rate" gorm:"type:decimal(12,6);not null"`
	PerformanceAmount decimal.Decimal `json:"performance_amount" gorm:"type:decimal(18,4);not null"`
	CommissionRate    decimal.Decimal `json:"commission_rate" gorm:"type:decimal(12,6);not null"`
	CommissionAmount  decimal.Decimal `json:"commission_amount" gorm:"type:decimal(18,4);not null"`
	Remarks           string          `json:"remarks" gorm:"type:text"`
	ItemType          ItemType        `json:"item_type" gorm:"size:64;not null;index:idx_commission_item"`
	ItemID            string          `json:"item_id" gorm:"size:64;not null;index:idx_commission_item"`
}

// TableName 指定表名
func (EmployeeCommission) TableName() string {
	return "employee_commissions"
}

// BeforeCreate ensures UUID is set
func (ec *EmployeeCommission) BeforeCreate(tx *gorm.DB) error {
	if ec.UUID == uuid.Nil {
		ec.UUID = uuid.New()
	}
	return nil
}

// CommissionFilter narrows commission listings. Zero values are ignored.
type CommissionFilter struct {
	EmployeeID string
	ItemType   ItemType
	From       time.Time
	To         time.Time
	Limit      int
}

// DailyCommission is one day of an employee's commission breakdown.
type DailyCommission struct {
	Day               string          `json:"day"` // YYYY-MM-DD
	Records           int64           `json:"records"`
	PerformanceAmount decimal.Decimal `json:"performance_amount"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
}
