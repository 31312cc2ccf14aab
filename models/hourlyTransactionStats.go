package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HourlyTransactionStats holds per-hour stats for the live dashboard.
// Grain: (date, hour, client_code); the overall (all merchants) row uses an
// empty client_code so it can take part in the composite primary key.
type HourlyTransactionStats struct {
	Date       time.Time `gorm:"primaryKey;type:date" json:"date"`
	Hour       int       `gorm:"primaryKey" json:"hour"` // 0-23
	ClientCode string    `gorm:"primaryKey;size:255" json:"client_code"`

	TotalCount   int `gorm:"default:0" json:"total_count"`
	SuccessCount int `gorm:"default:0" json:"success_count"`
	FailedCount  int `gorm:"default:0" json:"failed_count"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_amount"`
	SuccessAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"success_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (HourlyTransactionStats) TableName() string {
	return "hourly_transaction_stats"
}
