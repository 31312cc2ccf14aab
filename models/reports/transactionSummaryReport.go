package reports

import (
	"context"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
	"github.com/shopspring/decimal"
)

type TransactionSummaryResponse struct {
	TotalCount   int64 `json:"total_count"`
	SuccessCount int64 `json:"success_count"`
	FailedCount  int64 `json:"failed_count"`
	PendingCount int64 `json:"pending_count"`
	AbortedCount int64 `json:"aborted_count"`

	TotalAmount   decimal.Decimal `json:"total_amount"`
	SuccessAmount decimal.Decimal `json:"success_amount"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`

	// UnsettledAmount is what the merchant is still owed: successful volume
	// minus what has already been settled.
	UnsettledAmount decimal.Decimal `json:"unsettled_amount"`

	SuccessRate float64 `json:"success_rate"`
}

// GetTransactionSummaryReport aggregates over exactly the set the history
// listing would return for the same filter, so the tiles above the table
// always agree with the rows in it.
func GetTransactionSummaryReport(ctx context.Context, f *models.SearchFilter, actor *models.Actor, params map[string]string, now time.Time) (*TransactionSummaryResponse, error) {
	started := time.Now()
	defer logSlowReport(ctx, "transaction_summary", started, nil)

	key := utils.CacheKey("report:summary", cacheParams(actor, params))
	ttl := utils.CacheTTLOverride("summary", utils.CacheTTLSummary)

	result, _, err := utils.GetOrCompute(ctx, key, ttl, func() (*TransactionSummaryResponse, error) {
		var row TransactionSummaryResponse
		db := config.GetDB().WithContext(ctx)
		q := f.ApplyUnsorted(db.Model(&models.TransactionDetail{}), actor, now)
		err := q.Select(`
COUNT(*) AS total_count,
SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END) AS success_count,
SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END) AS failed_count,
SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END) AS pending_count,
SUM(CASE WHEN status = 'ABORTED' THEN 1 ELSE 0 END) AS aborted_count,
COALESCE(SUM(paid_amount), 0) AS total_amount,
COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0) AS success_amount,
COALESCE(SUM(CASE WHEN is_settled = 1 THEN settlement_amount ELSE 0 END), 0) AS settled_amount,
COALESCE(SUM(CASE WHEN refund_date IS NOT NULL THEN paid_amount ELSE 0 END), 0) AS refund_amount`).
			Scan(&row).Error
		if err != nil {
			return nil, err
		}

		row.UnsettledAmount = row.SuccessAmount.Sub(row.SettledAmount)
		if row.TotalCount > 0 {
			row.SuccessRate = float64(row.SuccessCount) / float64(row.TotalCount) * 100
		}
		return &row, nil
	})
	return result, err
}
