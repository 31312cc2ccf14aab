package reports

import (
	"context"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
	"github.com/shopspring/decimal"
)

// Analytics reads serve dashboards from the rollup tables only; they never
// scan transaction_detail. Figures are as fresh as the last aggregation run.

// resolveAnalyticsScope decides which client_code the query is pinned to.
// Empty means all merchants. Non-admins are always pinned to their own code.
func resolveAnalyticsScope(actor *models.Actor, merchantCode string) string {
	if !actor.IsAdmin() {
		return actor.ClientCode
	}
	if merchantCode == models.FilterValueAll {
		return ""
	}
	return merchantCode
}

// defaultAnalyticsRange fills missing bounds with the trailing 30 days.
func defaultAnalyticsRange(from, to time.Time, now time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = models.StartOfDay(to.AddDate(0, 0, -29))
	}
	return from, to
}

type DailyAnalyticsRow struct {
	Date         time.Time `json:"date"`
	TotalCount   int       `json:"total_count"`
	SuccessCount int       `json:"success_count"`
	FailedCount  int       `json:"failed_count"`
	PendingCount int       `json:"pending_count"`

	TotalAmount     decimal.Decimal `json:"total_amount"`
	SuccessAmount   decimal.Decimal `json:"success_amount"`
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	UnsettledAmount decimal.Decimal `json:"unsettled_amount"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`

	SuccessRate float64 `json:"success_rate"`
}

func GetDailyAnalytics(ctx context.Context, actor *models.Actor, merchantCode string, from, to time.Time, params map[string]string, now time.Time) ([]*DailyAnalyticsRow, error) {
	started := time.Now()
	defer logSlowReport(ctx, "daily_analytics", started, nil)

	scope := resolveAnalyticsScope(actor, merchantCode)
	from, to = defaultAnalyticsRange(from, to, now)

	key := utils.CacheKey("report:analytics:daily", cacheParams(actor, params))
	ttl := utils.CacheTTLOverride("analytics", utils.CacheTTLAnalytics)

	result, _, err := utils.GetOrCompute(ctx, key, ttl, func() ([]*DailyAnalyticsRow, error) {
		sql := `
SELECT
    date,
    SUM(total_count) AS total_count,
    SUM(success_count) AS success_count,
    SUM(failed_count) AS failed_count,
    SUM(pending_count) AS pending_count,
    SUM(total_amount) AS total_amount,
    SUM(success_amount) AS success_amount,
    SUM(settled_amount) AS settled_amount,
    SUM(unsettled_amount) AS unsettled_amount,
    SUM(refund_amount) AS refund_amount
FROM
    daily_transaction_summaries
WHERE
    date BETWEEN @fromDate AND @toDate
    AND (@clientCode = '' OR client_code = @clientCode)
GROUP BY date
ORDER BY date`

		var rows []*DailyAnalyticsRow
		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"fromDate":   from.Format("2006-01-02"),
			"toDate":     to.Format("2006-01-02"),
			"clientCode": scope,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			if r.TotalCount > 0 {
				r.SuccessRate = float64(r.SuccessCount) / float64(r.TotalCount) * 100
			}
		}
		return rows, nil
	})
	return result, err
}

type PaymentModeAnalyticsRow struct {
	PaymentMode  string `json:"payment_mode"`
	TotalCount   int    `json:"total_count"`
	SuccessCount int    `json:"success_count"`
	FailedCount  int    `json:"failed_count"`

	TotalAmount          decimal.Decimal `json:"total_amount"`
	SuccessAmount        decimal.Decimal `json:"success_amount"`
	AvgTransactionAmount decimal.Decimal `json:"avg_transaction_amount"`

	SuccessRate float64 `json:"success_rate"`
	// ShareOfVolume is this mode's percentage of the period's total amount.
	ShareOfVolume float64 `json:"share_of_volume"`
}

func GetPaymentModeAnalytics(ctx context.Context, actor *models.Actor, merchantCode string, from, to time.Time, params map[string]string, now time.Time) ([]*PaymentModeAnalyticsRow, error) {
	started := time.Now()
	defer logSlowReport(ctx, "payment_mode_analytics", started, nil)

	scope := resolveAnalyticsScope(actor, merchantCode)
	from, to = defaultAnalyticsRange(from, to, now)

	key := utils.CacheKey("report:analytics:modes", cacheParams(actor, params))
	ttl := utils.CacheTTLOverride("analytics", utils.CacheTTLAnalytics)

	result, _, err := utils.GetOrCompute(ctx, key, ttl, func() ([]*PaymentModeAnalyticsRow, error) {
		sql := `
SELECT
    payment_mode,
    SUM(total_count) AS total_count,
    SUM(success_count) AS success_count,
    SUM(failed_count) AS failed_count,
    SUM(total_amount) AS total_amount,
    SUM(success_amount) AS success_amount,
    CASE WHEN SUM(total_count) > 0
        THEN SUM(total_amount) / SUM(total_count)
        ELSE 0
    END AS avg_transaction_amount
FROM
    payment_mode_summaries
WHERE
    date BETWEEN @fromDate AND @toDate
    AND (@clientCode = '' OR client_code = @clientCode)
GROUP BY payment_mode
ORDER BY total_amount DESC`

		var rows []*PaymentModeAnalyticsRow
		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"fromDate":   from.Format("2006-01-02"),
			"toDate":     to.Format("2006-01-02"),
			"clientCode": scope,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}

		grandTotal := decimal.Zero
		for _, r := range rows {
			grandTotal = grandTotal.Add(r.TotalAmount)
		}
		for _, r := range rows {
			if r.TotalCount > 0 {
				r.SuccessRate = float64(r.SuccessCount) / float64(r.TotalCount) * 100
			}
			if grandTotal.IsPositive() {
				share, _ := r.TotalAmount.Div(grandTotal).Mul(decimal.NewFromInt(100)).Float64()
				r.ShareOfVolume = share
			}
		}
		return rows, nil
	})
	return result, err
}

type HourlyAnalyticsRow struct {
	Hour         int `json:"hour"`
	TotalCount   int `json:"total_count"`
	SuccessCount int `json:"success_count"`
	FailedCount  int `json:"failed_count"`

	TotalAmount   decimal.Decimal `json:"total_amount"`
	SuccessAmount decimal.Decimal `json:"success_amount"`
}

// GetHourlyAnalytics returns the per-hour curve for a single date. Admins
// without a merchant filter get the precomputed overall row, not a sum: the
// maintainer writes the overall bucket under an empty client_code.
func GetHourlyAnalytics(ctx context.Context, actor *models.Actor, merchantCode string, date time.Time, params map[string]string, now time.Time) ([]*HourlyAnalyticsRow, error) {
	started := time.Now()
	defer logSlowReport(ctx, "hourly_analytics", started, nil)

	scope := resolveAnalyticsScope(actor, merchantCode)
	if date.IsZero() {
		date = models.StartOfDay(now)
	}

	// Today's curve is still moving; cache it like the live summary tiles.
	key := utils.CacheKey("report:analytics:hourly", cacheParams(actor, params))
	ttl := utils.CacheTTLOverride("hourly", utils.CacheTTLSummary)

	result, _, err := utils.GetOrCompute(ctx, key, ttl, func() ([]*HourlyAnalyticsRow, error) {
		sql := `
SELECT
    hour,
    total_count,
    success_count,
    failed_count,
    total_amount,
    success_amount
FROM
    hourly_transaction_stats
WHERE
    date = @date AND client_code = @clientCode
ORDER BY hour`

		var rows []*HourlyAnalyticsRow
		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"date":       date.Format("2006-01-02"),
			"clientCode": scope,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
	return result, err
}

type MonthlyAnalyticsRow struct {
	Year         int `json:"year"`
	Month        int `json:"month"`
	TotalCount   int `json:"total_count"`
	SuccessCount int `json:"success_count"`
	FailedCount  int `json:"failed_count"`

	TotalAmount       decimal.Decimal `json:"total_amount"`
	SuccessAmount     decimal.Decimal `json:"success_amount"`
	SettledAmount     decimal.Decimal `json:"settled_amount"`
	PendingSettlement decimal.Decimal `json:"pending_settlement"`

	UniqueCustomers         int             `json:"unique_customers"`
	AverageTransactionValue decimal.Decimal `json:"average_transaction_value"`
}

// GetMonthlyAnalytics returns one row per month of the given year. Unique
// customer counts cannot be summed across merchants, so the all-merchant view
// reports them as 0.
func GetMonthlyAnalytics(ctx context.Context, actor *models.Actor, merchantCode string, year int, params map[string]string, now time.Time) ([]*MonthlyAnalyticsRow, error) {
	started := time.Now()
	defer logSlowReport(ctx, "monthly_analytics", started, nil)

	scope := resolveAnalyticsScope(actor, merchantCode)
	if year == 0 {
		year = now.Year()
	}

	key := utils.CacheKey("report:analytics:monthly", cacheParams(actor, params))
	ttl := utils.CacheTTLOverride("analytics", utils.CacheTTLAnalytics)

	result, _, err := utils.GetOrCompute(ctx, key, ttl, func() ([]*MonthlyAnalyticsRow, error) {
		sql := `
SELECT
    year,
    month,
    SUM(total_count) AS total_count,
    SUM(success_count) AS success_count,
    SUM(failed_count) AS failed_count,
    SUM(total_amount) AS total_amount,
    SUM(success_amount) AS success_amount,
    SUM(settled_amount) AS settled_amount,
    SUM(pending_settlement) AS pending_settlement,
    CASE WHEN @clientCode = '' THEN 0 ELSE SUM(unique_customers) END AS unique_customers,
    CASE WHEN SUM(total_count) > 0
        THEN SUM(total_amount) / SUM(total_count)
        ELSE 0
    END AS average_transaction_value
FROM
    merchant_monthly_stats
WHERE
    year = @year
    AND (@clientCode = '' OR client_code = @clientCode)
GROUP BY year, month
ORDER BY month`

		var rows []*MonthlyAnalyticsRow
		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"year":       year,
			"clientCode": scope,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
	return result, err
}
