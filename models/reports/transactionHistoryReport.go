package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// GetTransactionHistory returns one page of transactions matching the filter,
// scoped to the actor. Pages are cached per parameter set for a few minutes.
func GetTransactionHistory(ctx context.Context, f *models.SearchFilter, actor *models.Actor, page models.Page, params map[string]string, now time.Time) (*models.PaginatedResult[models.TransactionDetail], error) {
	started := time.Now()
	defer logSlowReport(ctx, "transaction_history", started, map[string]any{"page": page.Number})

	keyParams := cacheParams(actor, params)
	keyParams["_page"] = fmt.Sprint(page.Number)
	keyParams["_page_size"] = fmt.Sprint(page.Size)
	key := utils.CacheKey("report:history", keyParams)
	ttl := utils.CacheTTLOverride("history", utils.CacheTTLHistory)

	result, _, err := utils.GetOrCompute(ctx, key, ttl, func() (*models.PaginatedResult[models.TransactionDetail], error) {
		db := config.GetDB().WithContext(ctx)

		var count int64
		if err := f.ApplyUnsorted(db.Model(&models.TransactionDetail{}), actor, now).
			Count(&count).Error; err != nil {
			return nil, err
		}

		var rows []models.TransactionDetail
		q := f.Apply(db.Model(&models.TransactionDetail{}), actor, now)
		if err := page.Apply(q).Find(&rows).Error; err != nil {
			return nil, err
		}

		return &models.PaginatedResult[models.TransactionDetail]{
			Count:    count,
			Page:     page.Number,
			PageSize: page.Size,
			Results:  rows,
		}, nil
	})
	return result, err
}

// ExportMaxRows caps excel exports; larger sets should be pulled page by page.
func ExportMaxRows() int {
	return config.IntFromEnv("EXPORT_MAX_ROWS", 10000)
}

var exportHeaders = []string{
	"Txn Id", "Client Txn Id", "Merchant", "Date", "Status", "Payment Mode",
	"Amount", "Payee Email", "Payee Mobile", "Bank Txn Id", "Settled", "Settlement Amount", "Refund Date",
}

// ExportTransactionHistory writes the filtered set (up to ExportMaxRows) to
// an in-memory xlsx workbook. Exports bypass the cache: they are rare and the
// payload is too large to be worth keeping in redis.
func ExportTransactionHistory(ctx context.Context, f *models.SearchFilter, actor *models.Actor, now time.Time) (*excelize.File, error) {
	started := time.Now()
	defer logSlowReport(ctx, "transaction_export", started, nil)

	db := config.GetDB().WithContext(ctx)
	var rows []models.TransactionDetail
	q := f.Apply(db.Model(&models.TransactionDetail{}), actor, now)
	if err := q.Limit(ExportMaxRows()).Find(&rows).Error; err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := file.NewSheet(sheet); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		file.SetCellValue(sheet, cell, h)
	}

	for rowNo, t := range rows {
		values := []interface{}{
			t.TxnId,
			t.ClientTxnId,
			t.ClientCode,
			t.TransDate.Format("2006-01-02 15:04:05"),
			t.Status,
			t.PaymentMode,
			t.PaidAmount.String(),
			t.PayeeEmail,
			t.PayeeMob,
			t.BankTxnId,
			t.IsSettled,
			decimalOrEmpty(t.SettlementAmount),
			dateOrEmpty(t.RefundDate),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNo+2)
			if err != nil {
				return nil, err
			}
			file.SetCellValue(sheet, cell, v)
		}
	}

	return file, nil
}

func decimalOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
