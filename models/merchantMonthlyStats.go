package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MerchantMonthlyStats is the per-merchant monthly rollup for long-term
// trends. Grain: (year, month, client_code).
type MerchantMonthlyStats struct {
	Year       int    `gorm:"primaryKey" json:"year"`
	Month      int    `gorm:"primaryKey" json:"month"` // 1-12
	ClientCode string `gorm:"primaryKey;size:255" json:"client_code"`

	TotalCount   int `gorm:"default:0" json:"total_count"`
	SuccessCount int `gorm:"default:0" json:"success_count"`
	FailedCount  int `gorm:"default:0" json:"failed_count"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_amount"`
	SuccessAmount decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"success_amount"`

	SettledAmount     decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"settled_amount"`
	PendingSettlement decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"pending_settlement"`

	UniqueCustomers         int             `gorm:"default:0" json:"unique_customers"`
	AverageTransactionValue decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"average_transaction_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MerchantMonthlyStats) TableName() string {
	return "merchant_monthly_stats"
}
