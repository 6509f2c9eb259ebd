package models

import "github.com/shopspring/decimal"

// MemberVoucher is a prepaid balance owned by a member.
type MemberVoucher struct {
	BaseModel
	MemberID    string          `json:"member_id" gorm:"size:64;not null;index"`
	VoucherName string          `json:"voucher_name" gorm:"not null"`
	FaceValue   decimal.Decimal `json:"face_value" gorm:"type:decimal(14,2);not null"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:decimal(14,2);not null"`
}

// TableName 指定表名
func (MemberVoucher) TableName() string {
	return "member_vouchers"
}

// MemberVoucherTransactionLog records one deduction from a voucher balance.
type MemberVoucherTransactionLog struct {
	BaseModel
	MemberVoucherID uint            `json:"member_voucher_id" gorm:"not null;index"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	BalanceAfter    decimal.Decimal `json:"balance_after" gorm:"type:decimal(14,2);not null"`
}

// TableName 指定表名
func (MemberVoucherTransactionLog) TableName() string {
	return "member_voucher_transaction_logs"
}
