package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyTransactionSummary is the per-merchant daily rollup used by dashboards.
//
// Grain: (date, client_code). Rows are point-in-time snapshots written only by
// the aggregation workflow; request-serving code never creates them ad hoc, so
// they can be stale until the next maintenance run.
type DailyTransactionSummary struct {
	Date       time.Time `gorm:"primaryKey;type:date" json:"date"`
	ClientCode string    `gorm:"primaryKey;size:255;index:idx_dts_client_date,priority:1" json:"client_code"`
	ClientName string    `gorm:"size:255" json:"client_name"`

	TotalCount   int `gorm:"default:0" json:"total_count"`
	SuccessCount int `gorm:"default:0" json:"success_count"`
	FailedCount  int `gorm:"default:0" json:"failed_count"`
	PendingCount int `gorm:"default:0" json:"pending_count"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_amount"`
	SuccessAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"success_amount"`
	FailedAmount  decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"failed_amount"`

	SettledCount    int             `gorm:"default:0" json:"settled_count"`
	SettledAmount   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"settled_amount"`
	UnsettledCount  int             `gorm:"default:0" json:"unsettled_count"`
	UnsettledAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"unsettled_amount"`

	RefundCount  int             `gorm:"default:0" json:"refund_count"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"refund_amount"`

	ChargebackCount  int             `gorm:"default:0" json:"chargeback_count"`
	ChargebackAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"chargeback_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyTransactionSummary) TableName() string {
	return "daily_transaction_summaries"
}

// SuccessRate is the success percentage for the day (0 when empty).
func (s *DailyTransactionSummary) SuccessRate() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCount) * 100
}
