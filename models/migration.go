package models

import (
	"log"

	"github.com/paynetra/reports_backend/config"
)

// MigrateTable creates/updates the tables this service owns: the rollup
// summaries and the report-user store. transaction_detail belongs to the
// payment pipeline and is intentionally not migrated here.
func MigrateTable() {
	db := config.GetDB()
	if db == nil {
		log.Printf("MigrateTable skipped: database not initialized")
		return
	}
	err := db.AutoMigrate(
		&DailyTransactionSummary{},
		&PaymentModeSummary{},
		&HourlyTransactionStats{},
		&MerchantMonthlyStats{},
		&ReportUser{},
	)
	if err != nil {
		log.Printf("auto-migration failed: %v", err)
	}
}
