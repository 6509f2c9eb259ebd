package models

import "github.com/shopspring/decimal"

// SaleItem is one service or product line of a sale.
type SaleItem struct {
	BaseModel
	MemberID  string          `json:"member_id" gorm:"size:64;index"`
	Type      string          `json:"type" gorm:"size:20;not null;index"` // service or product
	Name      string          `json:"name" gorm:"not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,2);not null"`
}

// TableName 指定表名
func (SaleItem) TableName() string {
	return "sale_items"
}
