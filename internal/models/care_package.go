package models

import "github.com/shopspring/decimal"

// MemberCarePackage is a prepaid bundle of service sessions owned by a member.
type MemberCarePackage struct {
	BaseModel
	MemberID          string          `json:"member_id" gorm:"size:64;not null;index"`
	PackageName       string          `json:"package_name" gorm:"not null"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(14,2);not null"`
	TotalSessions     int             `json:"total_sessions" gorm:"not null"`
	RemainingSessions int             `json:"remaining_sessions" gorm:"not null"`
}

// TableName 指定表名
func (MemberCarePackage) TableName() string {
	return "member_care_packages"
}

// MemberCarePackageTransactionLog records one consumption against a package.
type MemberCarePackageTransactionLog struct {
	BaseModel
	MemberCarePackageID uint   `json:"member_care_package_id" gorm:"not null;index"`
	ServiceName         string `json:"service_name" gorm:"not null"`
	Sessions            int    `json:"sessions" gorm:"not null"`
}

// TableName 指定表名
func (MemberCarePackageTransactionLog) TableName() string {
	return "member_care_package_transaction_logs"
}
