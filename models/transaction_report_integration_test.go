package models_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/models/reports"
	"github.com/paynetra/reports_backend/utils"
	"github.com/paynetra/reports_backend/workflow"
	"github.com/shopspring/decimal"
)

func seedTransaction(t *testing.T, txn models.TransactionDetail) {
	t.Helper()
	ctx := utils.SetSkipMerchantScopeInContext(context.Background(), true)
	if err := config.GetDB().WithContext(ctx).Create(&txn).Error; err != nil {
		t.Fatalf("seed transaction %s: %v", txn.TxnId, err)
	}
}

func txnAt(id, clientCode, status, mode string, amount int64, at time.Time) models.TransactionDetail {
	return models.TransactionDetail{
		TxnId:       id,
		ClientCode:  clientCode,
		ClientName:  clientCode + " Pvt Ltd",
		ClientTxnId: "c-" + id,
		TransDate:   at,
		Status:      status,
		PaymentMode: mode,
		PaidAmount:  decimal.NewFromInt(amount),
		PayeeEmail:  "payee-" + id + "@example.com",
	}
}

func merchantActor(clientCode string) *models.Actor {
	return &models.Actor{UserId: 2, Username: "merchant", Role: models.UserRoleMerchant, ClientCode: clientCode}
}

func adminActor() *models.Actor {
	return &models.Actor{UserId: 1, Username: "admin", Role: models.UserRoleAdmin}
}

// Non-admins must never see another merchant's rows, no matter what
// parameters they send.
func TestMerchantScope_NonAdminPinnedToOwnClientCode(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	now := time.Now().In(loc)

	seedTransaction(t, txnAt("t-own-1", "MERCH_A", "SUCCESS", "UPI", 100, now.Add(-time.Hour)))
	seedTransaction(t, txnAt("t-own-2", "MERCH_A", "FAILED", "UPI", 50, now.Add(-time.Hour)))
	seedTransaction(t, txnAt("t-other-1", "MERCH_B", "SUCCESS", "UPI", 999, now.Add(-time.Hour)))

	// The hostile part: the merchant explicitly asks for the other code.
	params := map[string]string{"merchant_code": "MERCH_B"}
	f, errs := models.ParseSearchFilter(params, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	result, err := reports.GetTransactionHistory(ctx, f, merchantActor("MERCH_A"), models.NewPage(1, 50), params, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 rows for MERCH_A; got %d", result.Count)
	}
	for _, row := range result.Results {
		if row.ClientCode != "MERCH_A" {
			t.Fatalf("merchant scope leak: got row for %s", row.ClientCode)
		}
	}

	// The same request from an admin honors the merchant filter.
	adminResult, err := reports.GetTransactionHistory(ctx, f, adminActor(), models.NewPage(1, 50), params, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory (admin): %v", err)
	}
	if adminResult.Count != 1 || adminResult.Results[0].ClientCode != "MERCH_B" {
		t.Fatalf("expected admin to see 1 MERCH_B row; got %+v", adminResult.Results)
	}
}

// Without date parameters, listings cover today only: start-of-day to now.
func TestDefaultDateWindow_TodayOnly(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	now := time.Now().In(loc)
	if now.Hour() < 3 {
		// Keep the "earlier today" seed inside today's window.
		now = models.StartOfDay(now).Add(3 * time.Hour)
	}

	seedTransaction(t, txnAt("t-today", "MERCH_A", "SUCCESS", "UPI", 100, now.Add(-2*time.Hour)))
	seedTransaction(t, txnAt("t-yesterday", "MERCH_A", "SUCCESS", "UPI", 100, now.AddDate(0, 0, -1)))

	f, errs := models.ParseSearchFilter(map[string]string{}, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	result, err := reports.GetTransactionHistory(ctx, f, merchantActor("MERCH_A"), models.NewPage(1, 50), map[string]string{}, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if result.Count != 1 || result.Results[0].TxnId != "t-today" {
		t.Fatalf("expected only today's row; got %+v", result.Results)
	}
}

// The summary tiles aggregate over exactly the filtered set.
func TestSummaryMatchesFilteredSet(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	now := time.Now().In(loc)
	base := models.StartOfDay(now).Add(time.Hour)

	seedTransaction(t, txnAt("s-1", "MERCH_A", "SUCCESS", "UPI", 100, base))
	seedTransaction(t, txnAt("s-2", "MERCH_A", "SUCCESS", "Credit Card", 50, base))
	seedTransaction(t, txnAt("s-3", "MERCH_A", "FAILED", "UPI", 75, base))
	seedTransaction(t, txnAt("s-4", "MERCH_B", "SUCCESS", "UPI", 999, base))

	f, errs := models.ParseSearchFilter(map[string]string{"payment_mode": "UPI"}, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	summary, err := reports.GetTransactionSummaryReport(ctx, f, merchantActor("MERCH_A"), map[string]string{"payment_mode": "UPI"}, now)
	if err != nil {
		t.Fatalf("GetTransactionSummaryReport: %v", err)
	}
	if summary.TotalCount != 2 {
		t.Fatalf("expected 2 UPI rows for MERCH_A; got %d", summary.TotalCount)
	}
	if summary.SuccessCount != 1 || summary.FailedCount != 1 {
		t.Fatalf("unexpected status split: %+v", summary)
	}
	if !summary.TotalAmount.Equal(decimal.NewFromInt(175)) {
		t.Fatalf("expected total 175; got %s", summary.TotalAmount)
	}
	if !summary.SuccessAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected success amount 100; got %s", summary.SuccessAmount)
	}
	if summary.SuccessRate != 50 {
		t.Fatalf("expected 50%% success rate; got %f", summary.SuccessRate)
	}
}

// Running the daily maintenance twice must converge to identical rows, and
// the rows must match the source data.
func TestDailyAggregation_IdempotentAndCorrect(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	seedTransaction(t, txnAt("d-1", "MERCH_A", "SUCCESS", "UPI", 100, day.Add(9*time.Hour)))
	seedTransaction(t, txnAt("d-2", "MERCH_A", "SUCCESS", "Credit Card", 50, day.Add(10*time.Hour)))
	seedTransaction(t, txnAt("d-3", "MERCH_A", "FAILED", "UPI", 25, day.Add(11*time.Hour)))
	seedTransaction(t, txnAt("d-4", "MERCH_B", "SUCCESS", "UPI", 200, day.Add(12*time.Hour)))

	for run := 1; run <= 2; run++ {
		if _, err := workflow.UpdateDailySummaries(ctx, day); err != nil {
			t.Fatalf("UpdateDailySummaries run %d: %v", run, err)
		}
	}

	db := config.GetDB()
	skipCtx := utils.SetSkipMerchantScopeInContext(ctx, true)

	var count int64
	if err := db.WithContext(skipCtx).Model(&models.DailyTransactionSummary{}).
		Where("date = ?", day.Format("2006-01-02")).Count(&count).Error; err != nil {
		t.Fatalf("count summaries: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected one row per merchant (2); got %d", count)
	}

	var row models.DailyTransactionSummary
	if err := db.WithContext(skipCtx).
		Where("date = ? AND client_code = ?", day.Format("2006-01-02"), "MERCH_A").
		First(&row).Error; err != nil {
		t.Fatalf("fetch MERCH_A summary: %v", err)
	}
	if row.TotalCount != 3 || row.SuccessCount != 2 || row.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if !row.TotalAmount.Equal(decimal.NewFromInt(175)) {
		t.Fatalf("expected total 175; got %s", row.TotalAmount)
	}
	if !row.SuccessAmount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected success 150; got %s", row.SuccessAmount)
	}
	// Nothing settled yet: everything successful is still owed.
	if !row.UnsettledAmount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected unsettled 150; got %s", row.UnsettledAmount)
	}
}

// End to end: seed raw transactions, run every maintenance pass, read the
// result back through the analytics facade.
func TestAggregationToAnalytics_EndToEnd(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	now := day.Add(20 * time.Hour)

	// 150 total across two merchants: 100 for A (90 success), 50 for B.
	for i := 0; i < 100; i++ {
		status := "SUCCESS"
		if i >= 90 {
			status = "FAILED"
		}
		seedTransaction(t, txnAt(fmt.Sprintf("e2e-a-%d", i), "MERCH_A", status, "UPI", 10, day.Add(time.Duration(9+i%8)*time.Hour)))
	}
	for i := 0; i < 50; i++ {
		seedTransaction(t, txnAt(fmt.Sprintf("e2e-b-%d", i), "MERCH_B", "SUCCESS", "Credit Card", 20, day.Add(time.Duration(10+i%4)*time.Hour)))
	}

	if _, err := workflow.BackfillSummaries(ctx, 1, now); err != nil {
		t.Fatalf("BackfillSummaries: %v", err)
	}

	// Admin all-merchant daily view sums both merchants.
	daily, err := reports.GetDailyAnalytics(ctx, adminActor(), models.FilterValueAll, day, now, map[string]string{}, now)
	if err != nil {
		t.Fatalf("GetDailyAnalytics: %v", err)
	}
	if len(daily) != 1 {
		t.Fatalf("expected 1 daily row; got %d", len(daily))
	}
	if daily[0].TotalCount != 150 || daily[0].SuccessCount != 140 {
		t.Fatalf("unexpected daily totals: %+v", daily[0])
	}
	if !daily[0].TotalAmount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected total amount 2000; got %s", daily[0].TotalAmount)
	}

	// Merchant-scoped payment mode split only sees its own mode.
	modes, err := reports.GetPaymentModeAnalytics(ctx, merchantActor("MERCH_B"), "", day, now, map[string]string{}, now)
	if err != nil {
		t.Fatalf("GetPaymentModeAnalytics: %v", err)
	}
	if len(modes) != 1 || modes[0].PaymentMode != "Credit Card" || modes[0].TotalCount != 50 {
		t.Fatalf("unexpected mode rows: %+v", modes)
	}

	// The overall hourly curve exists under the empty client_code bucket.
	hours, err := reports.GetHourlyAnalytics(ctx, adminActor(), models.FilterValueAll, day, map[string]string{}, now)
	if err != nil {
		t.Fatalf("GetHourlyAnalytics: %v", err)
	}
	var hourlyTotal int
	for _, h := range hours {
		hourlyTotal += h.TotalCount
	}
	if hourlyTotal != 150 {
		t.Fatalf("expected hourly buckets to cover all 150 transactions; got %d", hourlyTotal)
	}

	// Monthly rollup for the merchant carries unique customers.
	months, err := reports.GetMonthlyAnalytics(ctx, merchantActor("MERCH_A"), "", day.Year(), map[string]string{}, now)
	if err != nil {
		t.Fatalf("GetMonthlyAnalytics: %v", err)
	}
	if len(months) != 1 || months[0].Month != 3 {
		t.Fatalf("unexpected monthly rows: %+v", months)
	}
	if months[0].UniqueCustomers != 90 {
		t.Fatalf("expected 90 unique paying customers; got %d", months[0].UniqueCustomers)
	}
}

// When both an exact id and a free-text term are supplied, the exact lookup
// wins and the term is ignored.
func TestExactIdLookup_PrecedenceOverSearch(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	now := time.Now().In(loc)
	if now.Hour() < 3 {
		now = models.StartOfDay(now).Add(3 * time.Hour)
	}

	// Every row's payee_email matches the search term.
	seedTransaction(t, txnAt("p-1", "MERCH_A", "SUCCESS", "UPI", 100, now.Add(-2*time.Hour)))
	seedTransaction(t, txnAt("p-2", "MERCH_A", "SUCCESS", "UPI", 200, now.Add(-time.Hour)))
	seedTransaction(t, txnAt("p-3", "MERCH_A", "FAILED", "UPI", 300, now.Add(-time.Hour)))

	params := map[string]string{"txn_id": "p-2", "search": "example.com"}
	f, errs := models.ParseSearchFilter(params, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	result, err := reports.GetTransactionHistory(ctx, f, merchantActor("MERCH_A"), models.NewPage(1, 50), params, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if result.Count != 1 || result.Results[0].TxnId != "p-2" {
		t.Fatalf("expected only the exact txn_id match; got %+v", result.Results)
	}
}

// order_by accepts allow-listed keys only; anything else falls back to
// newest-first instead of reaching the database.
func TestOrderBy_UnknownKeyFallsBackToNewestFirst(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	now := time.Now().In(loc)
	if now.Hour() < 3 {
		now = models.StartOfDay(now).Add(3 * time.Hour)
	}

	seedTransaction(t, txnAt("o-old", "MERCH_A", "SUCCESS", "UPI", 500, now.Add(-2*time.Hour)))
	seedTransaction(t, txnAt("o-new", "MERCH_A", "SUCCESS", "UPI", 10, now.Add(-time.Hour)))

	hostile := map[string]string{"order_by": "paid_amount; DROP TABLE transaction_detail"}
	f, errs := models.ParseSearchFilter(hostile, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	result, err := reports.GetTransactionHistory(ctx, f, merchantActor("MERCH_A"), models.NewPage(1, 50), hostile, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if result.Count != 2 || result.Results[0].TxnId != "o-new" {
		t.Fatalf("expected default newest-first order; got %+v", result.Results)
	}

	// A valid descending amount sort is still honored.
	byAmount := map[string]string{"order_by": "-paid_amount"}
	f, errs = models.ParseSearchFilter(byAmount, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	result, err = reports.GetTransactionHistory(ctx, f, merchantActor("MERCH_A"), models.NewPage(1, 50), byAmount, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if result.Results[0].TxnId != "o-old" {
		t.Fatalf("expected largest amount first; got %+v", result.Results)
	}
}

// Free-text terms containing LIKE wildcards match literally.
func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	loc := utils.ReportLocation()
	now := time.Now().In(loc)
	if now.Hour() < 3 {
		now = models.StartOfDay(now).Add(3 * time.Hour)
	}

	withPercent := txnAt("w-1", "MERCH_A", "SUCCESS", "UPI", 100, now.Add(-time.Hour))
	withPercent.BankTxnId = "SALE100%OFF"
	seedTransaction(t, withPercent)

	// Would match "100%" too if the % were treated as a wildcard.
	withoutPercent := txnAt("w-2", "MERCH_A", "SUCCESS", "UPI", 100, now.Add(-time.Hour))
	withoutPercent.BankTxnId = "SALE100ZOFF"
	seedTransaction(t, withoutPercent)

	params := map[string]string{"search": "100%"}
	f, errs := models.ParseSearchFilter(params, loc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	result, err := reports.GetTransactionHistory(ctx, f, merchantActor("MERCH_A"), models.NewPage(1, 50), params, now)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if result.Count != 1 || result.Results[0].TxnId != "w-1" {
		t.Fatalf("expected only the literal %%-containing row; got %+v", result.Results)
	}
}
