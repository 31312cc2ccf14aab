package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/paynetra/reports_backend/config"
	"github.com/sirupsen/logrus"
)

// ErrAggregationRunning means another instance holds the lock for the same
// bucket. The caller should simply try again later; the running pass will
// produce the same rows.
var ErrAggregationRunning = errors.New("aggregation already running for this bucket")

// AggregationResult summarizes one maintenance pass. Processed is MySQL's
// affected-row count for the upserts, which reports 1 per row created and 2
// per row updated; it measures write activity, not distinct summary rows.
type AggregationResult struct {
	Bucket    string        `json:"bucket"`
	Processed int64         `json:"processed"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// acquireBucketLock serializes maintenance per bucket across instances.
// Unlike read-path locking this one is mandatory: two concurrent passes over
// the same bucket would interleave their upserts.
func acquireBucketLock(ctx context.Context, bucket string) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		// No redis yet; single-instance deployments still work.
		return nil, nil
	}
	lock, err := locker.Obtain(ctx, "aggregation:"+bucket, 5*time.Minute, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrAggregationRunning
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

func releaseBucketLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	if err := lock.Release(ctx); err != nil {
		config.LogError(config.GetLogger(), "workflow", "releaseBucketLock", "release", nil, err)
	}
}

// UpdateDailySummaries recomputes the per-merchant rollup for one calendar
// date from transaction_detail. The upsert recomputes every column from
// scratch, so re-running a date is always safe.
func UpdateDailySummaries(ctx context.Context, date time.Time) (*AggregationResult, error) {
	started := time.Now()
	day := date.Format("2006-01-02")

	lock, err := acquireBucketLock(ctx, "daily:"+day)
	if err != nil {
		return nil, err
	}
	defer releaseBucketLock(ctx, lock)

	db := config.GetDB()
	res := db.WithContext(ctx).Exec(`
		INSERT INTO daily_transaction_summaries (
			date, client_code, client_name,
			total_count, success_count, failed_count, pending_count,
			total_amount, success_amount, failed_amount,
			settled_count, settled_amount, unsettled_count, unsettled_amount,
			refund_count, refund_amount,
			chargeback_count, chargeback_amount,
			created_at, updated_at
		)
		SELECT
			DATE(trans_date),
			client_code,
			MAX(client_name),
			COUNT(*),
			SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END),
			COALESCE(SUM(paid_amount), 0),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'FAILED' THEN paid_amount ELSE 0 END), 0),
			SUM(CASE WHEN status = 'SUCCESS' AND is_settled = 1 THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' AND is_settled = 1 THEN settlement_amount ELSE 0 END), 0),
			SUM(CASE WHEN status = 'SUCCESS' AND is_settled = 0 THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0)
				- COALESCE(SUM(CASE WHEN status = 'SUCCESS' AND is_settled = 1 THEN settlement_amount ELSE 0 END), 0),
			SUM(CASE WHEN refund_date IS NOT NULL THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN refund_date IS NOT NULL THEN paid_amount ELSE 0 END), 0),
			SUM(CASE WHEN charge_back_date IS NOT NULL THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN charge_back_date IS NOT NULL THEN charge_back_amount ELSE 0 END), 0),
			NOW(),
			NOW()
		FROM transaction_detail
		WHERE DATE(trans_date) = ?
		GROUP BY DATE(trans_date), client_code
		ON DUPLICATE KEY UPDATE
			client_name = VALUES(client_name),
			total_count = VALUES(total_count),
			success_count = VALUES(success_count),
			failed_count = VALUES(failed_count),
			pending_count = VALUES(pending_count),
			total_amount = VALUES(total_amount),
			success_amount = VALUES(success_amount),
			failed_amount = VALUES(failed_amount),
			settled_count = VALUES(settled_count),
			settled_amount = VALUES(settled_amount),
			unsettled_count = VALUES(unsettled_count),
			unsettled_amount = VALUES(unsettled_amount),
			refund_count = VALUES(refund_count),
			refund_amount = VALUES(refund_amount),
			chargeback_count = VALUES(chargeback_count),
			chargeback_amount = VALUES(chargeback_amount),
			updated_at = NOW()
	`, day)
	if res.Error != nil {
		return nil, res.Error
	}

	result := &AggregationResult{
		Bucket:    "daily:" + day,
		Processed: res.RowsAffected,
		Duration:  time.Since(started),
	}
	logAggregation(result)
	return result, nil
}

// UpdatePaymentModeSummaries recomputes the per-mode rollup for one date.
func UpdatePaymentModeSummaries(ctx context.Context, date time.Time) (*AggregationResult, error) {
	started := time.Now()
	day := date.Format("2006-01-02")

	lock, err := acquireBucketLock(ctx, "modes:"+day)
	if err != nil {
		return nil, err
	}
	defer releaseBucketLock(ctx, lock)

	db := config.GetDB()
	res := db.WithContext(ctx).Exec(`
		INSERT INTO payment_mode_summaries (
			date, client_code, payment_mode,
			total_count, success_count, failed_count,
			total_amount, success_amount, avg_transaction_amount,
			created_at, updated_at
		)
		SELECT
			DATE(trans_date),
			client_code,
			payment_mode,
			COUNT(*),
			SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END),
			COALESCE(SUM(paid_amount), 0),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0),
			COALESCE(SUM(paid_amount) / COUNT(*), 0),
			NOW(),
			NOW()
		FROM transaction_detail
		WHERE DATE(trans_date) = ? AND payment_mode <> ''
		GROUP BY DATE(trans_date), client_code, payment_mode
		ON DUPLICATE KEY UPDATE
			total_count = VALUES(total_count),
			success_count = VALUES(success_count),
			failed_count = VALUES(failed_count),
			total_amount = VALUES(total_amount),
			success_amount = VALUES(success_amount),
			avg_transaction_amount = VALUES(avg_transaction_amount),
			updated_at = NOW()
	`, day)
	if res.Error != nil {
		return nil, res.Error
	}

	result := &AggregationResult{
		Bucket:    "modes:" + day,
		Processed: res.RowsAffected,
		Duration:  time.Since(started),
	}
	logAggregation(result)
	return result, nil
}

// UpdateHourlyStats recomputes the hourly curve for one date: one pass per
// merchant, plus the overall bucket stored under an empty client_code.
func UpdateHourlyStats(ctx context.Context, date time.Time) (*AggregationResult, error) {
	started := time.Now()
	day := date.Format("2006-01-02")

	lock, err := acquireBucketLock(ctx, "hourly:"+day)
	if err != nil {
		return nil, err
	}
	defer releaseBucketLock(ctx, lock)

	db := config.GetDB()
	var processed int64
	for _, grouped := range []bool{true, false} {
		clientExpr := "''"
		groupBy := "DATE(trans_date), HOUR(trans_date)"
		if grouped {
			clientExpr = "client_code"
			groupBy = "DATE(trans_date), HOUR(trans_date), client_code"
		}
		res := db.WithContext(ctx).Exec(fmt.Sprintf(`
			INSERT INTO hourly_transaction_stats (
				date, hour, client_code,
				total_count, success_count, failed_count,
				total_amount, success_amount,
				created_at, updated_at
			)
			SELECT
				DATE(trans_date),
				HOUR(trans_date),
				%s,
				COUNT(*),
				SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END),
				SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END),
				COALESCE(SUM(paid_amount), 0),
				COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0),
				NOW(),
				NOW()
			FROM transaction_detail
			WHERE DATE(trans_date) = ?
			GROUP BY %s
			ON DUPLICATE KEY UPDATE
				total_count = VALUES(total_count),
				success_count = VALUES(success_count),
				failed_count = VALUES(failed_count),
				total_amount = VALUES(total_amount),
				success_amount = VALUES(success_amount),
				updated_at = NOW()
		`, clientExpr, groupBy), day)
		if res.Error != nil {
			return nil, res.Error
		}
		processed += res.RowsAffected
	}

	result := &AggregationResult{
		Bucket:    "hourly:" + day,
		Processed: processed,
		Duration:  time.Since(started),
	}
	logAggregation(result)
	return result, nil
}

// UpdateMonthlyStats recomputes one (year, month) bucket per merchant.
// Unique customers are distinct payee emails with at least one success.
func UpdateMonthlyStats(ctx context.Context, year int, month int) (*AggregationResult, error) {
	started := time.Now()
	bucket := fmt.Sprintf("monthly:%04d-%02d", year, month)

	lock, err := acquireBucketLock(ctx, bucket)
	if err != nil {
		return nil, err
	}
	defer releaseBucketLock(ctx, lock)

	db := config.GetDB()
	res := db.WithContext(ctx).Exec(`
		INSERT INTO merchant_monthly_stats (
			year, month, client_code,
			total_count, success_count, failed_count,
			total_amount, success_amount,
			settled_amount, pending_settlement,
			unique_customers, average_transaction_value,
			created_at, updated_at
		)
		SELECT
			YEAR(trans_date),
			MONTH(trans_date),
			client_code,
			COUNT(*),
			SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END),
			COALESCE(SUM(paid_amount), 0),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' AND is_settled = 1 THEN settlement_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN paid_amount ELSE 0 END), 0)
				- COALESCE(SUM(CASE WHEN status = 'SUCCESS' AND is_settled = 1 THEN settlement_amount ELSE 0 END), 0),
			COUNT(DISTINCT CASE WHEN status = 'SUCCESS' AND payee_email <> '' THEN payee_email END),
			COALESCE(SUM(paid_amount) / COUNT(*), 0),
			NOW(),
			NOW()
		FROM transaction_detail
		WHERE YEAR(trans_date) = ? AND MONTH(trans_date) = ?
		GROUP BY YEAR(trans_date), MONTH(trans_date), client_code
		ON DUPLICATE KEY UPDATE
			total_count = VALUES(total_count),
			success_count = VALUES(success_count),
			failed_count = VALUES(failed_count),
			total_amount = VALUES(total_amount),
			success_amount = VALUES(success_amount),
			settled_amount = VALUES(settled_amount),
			pending_settlement = VALUES(pending_settlement),
			unique_customers = VALUES(unique_customers),
			average_transaction_value = VALUES(average_transaction_value),
			updated_at = NOW()
	`, year, month)
	if res.Error != nil {
		return nil, res.Error
	}

	result := &AggregationResult{
		Bucket:    bucket,
		Processed: res.RowsAffected,
		Duration:  time.Since(started),
	}
	logAggregation(result)
	return result, nil
}

// BackfillSummaries rebuilds the daily, payment-mode and hourly rollups for
// the trailing N days, then the monthly buckets those days touch. One bad day
// does not stop the rest; its error is collected and reported.
func BackfillSummaries(ctx context.Context, days int, now time.Time) (*AggregationResult, error) {
	started := time.Now()
	if days < 1 {
		days = 1
	}

	result := &AggregationResult{Bucket: fmt.Sprintf("backfill:%dd", days)}
	months := map[[2]int]bool{}

	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i)
		months[[2]int{date.Year(), int(date.Month())}] = true

		for _, step := range []struct {
			name string
			run  func() (*AggregationResult, error)
		}{
			{"daily", func() (*AggregationResult, error) { return UpdateDailySummaries(ctx, date) }},
			{"modes", func() (*AggregationResult, error) { return UpdatePaymentModeSummaries(ctx, date) }},
			{"hourly", func() (*AggregationResult, error) { return UpdateHourlyStats(ctx, date) }},
		} {
			r, err := step.run()
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s %s: %v", step.name, date.Format("2006-01-02"), err))
				continue
			}
			result.Processed += r.Processed
		}
	}

	for ym := range months {
		r, err := UpdateMonthlyStats(ctx, ym[0], ym[1])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("monthly %04d-%02d: %v", ym[0], ym[1], err))
			continue
		}
		result.Processed += r.Processed
	}

	result.Duration = time.Since(started)
	logAggregation(result)
	return result, nil
}

func logAggregation(r *AggregationResult) {
	config.GetLogger().WithFields(logrus.Fields{
		"module":    "workflow",
		"bucket":    r.Bucket,
		"processed": r.Processed,
		"errors":    len(r.Errors),
		"ms":        r.Duration.Milliseconds(),
	}).Info("aggregation pass finished")
}
