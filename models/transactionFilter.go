package models

import (
	"os"
	"strings"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Apply narrows the given query with every requested predicate, in a fixed
// order where each step only ever restricts the working set:
//
//  1. merchant scope (security boundary: non-admins are pinned to their own
//     client_code no matter what the parameters say)
//  2. date range (defaults to today; listings never return unbounded history)
//  3. payment mode
//  4. status
//  5. amount range
//  6. exact transaction-id lookup (takes precedence over free-text search)
//  7. free-text search
//  8. sort (allow-listed keys only)
//
// Apply assumes the filter came out of ParseSearchFilter; whatever malformed
// input survives degrades to a literal match instead of erroring.
func (f *SearchFilter) Apply(db *gorm.DB, actor *Actor, now time.Time) *gorm.DB {
	initial := initialCount(db)
	db, applied := f.restrict(db, actor, now)

	// 8. Sort: allow-listed keys only, default newest first.
	order, ok := validSortKeys[f.OrderBy]
	if !ok {
		order = validSortKeys[defaultSortKey]
	}
	db = db.Order(order)

	logApplied(db, actor, applied, initial)
	return db
}

// ApplyUnsorted narrows the query with predicates 1-7 but leaves ordering
// alone. Aggregate queries use this; an ORDER BY on a non-grouped column
// would break them under ONLY_FULL_GROUP_BY.
func (f *SearchFilter) ApplyUnsorted(db *gorm.DB, actor *Actor, now time.Time) *gorm.DB {
	initial := initialCount(db)
	db, applied := f.restrict(db, actor, now)
	logApplied(db, actor, applied, initial)
	return db
}

func (f *SearchFilter) restrict(db *gorm.DB, actor *Actor, now time.Time) (*gorm.DB, []string) {
	var applied []string

	// 1. Merchant scope.
	if actor.IsAdmin() {
		if f.MerchantCode != "" && f.MerchantCode != FilterValueAll {
			db = db.Where("client_code = ?", f.MerchantCode)
			applied = append(applied, "merchant="+f.MerchantCode)
		}
	} else {
		// Non-admins only ever see their own merchant; the parameter is ignored.
		db = db.Where("client_code = ?", actor.ClientCode)
		applied = append(applied, "merchant="+actor.ClientCode+" (scoped)")
	}

	// 2. Date range. A symbolic date_filter fills missing bounds; with nothing
	// supplied the listing family defaults to today (start-of-day .. now).
	dateFrom, dateTo := f.DateFrom, f.DateTo
	if dateFrom == nil && dateTo == nil && f.DateFilter != "" {
		if start, end, ok := ResolveDateRange(f.DateFilter, now); ok {
			dateFrom, dateTo = &start, &end
			applied = append(applied, "date_filter="+f.DateFilter)
		}
	}
	if dateFrom != nil {
		db = db.Where("trans_date >= ?", *dateFrom)
		applied = append(applied, "from="+dateFrom.Format(dateParamLayout))
	} else {
		start := StartOfDay(now)
		db = db.Where("trans_date >= ?", start)
		applied = append(applied, "from="+start.Format(dateParamLayout)+" (today)")
	}
	if dateTo != nil {
		db = db.Where("trans_date <= ?", *dateTo)
		applied = append(applied, "to="+dateTo.Format(dateParamLayout))
	} else {
		db = db.Where("trans_date <= ?", now)
		applied = append(applied, "to="+now.Format(dateParamLayout)+" (today)")
	}

	// 3. Payment mode: OR of case-insensitive exact matches on the canonical
	// (or passthrough) strings.
	if len(f.PaymentModes) > 0 {
		modes := make([]string, 0, len(f.PaymentModes))
		for _, m := range f.PaymentModes {
			modes = append(modes, strings.ToUpper(m.Canonical))
		}
		db = db.Where("UPPER(payment_mode) IN ?", modes)
		applied = append(applied, "payment_modes="+strings.Join(modes, ","))
	}

	// 4. Status.
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		db = db.Where("status IN ?", statuses)
		applied = append(applied, "statuses="+strings.Join(statuses, ","))
	}

	// 5. Amount range.
	if f.MinAmount != nil {
		db = db.Where("paid_amount >= ?", *f.MinAmount)
		applied = append(applied, "min_amount="+f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		db = db.Where("paid_amount <= ?", *f.MaxAmount)
		applied = append(applied, "max_amount="+f.MaxAmount.String())
	}

	// 6./7. Exact ID lookup wins over free-text search.
	switch {
	case f.TxnId != "":
		db = db.Where("txn_id = ?", f.TxnId)
		applied = append(applied, "txn_id="+f.TxnId)
	case f.ClientTxnId != "":
		db = db.Where("client_txn_id = ?", f.ClientTxnId)
		applied = append(applied, "client_txn_id="+f.ClientTxnId)
	case f.Search != "":
		like := "%" + escapeLike(f.Search) + "%"
		db = db.Where(
			"txn_id LIKE ? OR client_txn_id LIKE ? OR payee_email LIKE ? OR payee_mob LIKE ? OR bank_txn_id LIKE ?",
			like, like, like, like, like,
		)
		applied = append(applied, "search="+f.Search)
	}

	return db, applied
}

// escapeLike neutralizes LIKE wildcards so search input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func filterCountDebug() bool {
	return strings.TrimSpace(os.Getenv("FILTER_COUNT_DEBUG")) == "1"
}

// initialCount snapshots the row count before any predicate is applied. It
// has to run up front: later chain calls mutate the shared statement.
func initialCount(db *gorm.DB) int64 {
	if !filterCountDebug() {
		return -1
	}
	var n int64
	db.Session(&gorm.Session{}).Count(&n)
	return n
}

// logApplied emits one debug line per composed query. FILTER_COUNT_DEBUG=1
// adds the initial/final row-count delta; that costs two extra COUNTs, so
// it stays off outside of troubleshooting.
func logApplied(db *gorm.DB, actor *Actor, applied []string, initial int64) {
	fields := logrus.Fields{
		"module":  "models",
		"user":    actor.Username,
		"filters": strings.Join(applied, " | "),
	}
	if filterCountDebug() {
		var finalCount int64
		db.Session(&gorm.Session{}).Count(&finalCount)
		fields["initial_count"] = initial
		fields["final_count"] = finalCount
	}
	config.GetLogger().WithFields(fields).Debug("transaction filter applied")
}
