package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentModeSummary is the per-merchant, per-mode daily rollup.
// Grain: (date, client_code, payment_mode).
type PaymentModeSummary struct {
	Date        time.Time `gorm:"primaryKey;type:date" json:"date"`
	ClientCode  string    `gorm:"primaryKey;size:255" json:"client_code"`
	PaymentMode string    `gorm:"primaryKey;size:255" json:"payment_mode"`

	TotalCount   int `gorm:"default:0" json:"total_count"`
	SuccessCount int `gorm:"default:0" json:"success_count"`
	FailedCount  int `gorm:"default:0" json:"failed_count"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_amount"`
	SuccessAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"success_amount"`

	AvgTransactionAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"avg_transaction_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentModeSummary) TableName() string {
	return "payment_mode_summaries"
}
