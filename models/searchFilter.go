package models

import (
	"strings"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateParamLayout = "2006-01-02"

// PaymentModeFilter is one requested payment mode. Unrecognized input is kept
// as a passthrough (matched verbatim, likely zero rows) instead of being
// rejected, because the authoritative list of mode strings drifts upstream.
type PaymentModeFilter struct {
	Raw        string
	Canonical  string
	Recognized bool
}

// SearchFilter is the validated, strongly typed form of the query parameters.
// Once built, DateFrom <= DateTo and the amount bounds are well-formed; the
// composer consumes this struct and never re-parses strings.
type SearchFilter struct {
	DateFilter string

	// Inclusive bounds on trans_date. Nil means "not supplied" and the
	// composer applies its per-endpoint default.
	DateFrom *time.Time
	DateTo   *time.Time

	// MerchantCode is honored for admin actors only.
	MerchantCode string

	PaymentModes []PaymentModeFilter
	Statuses     []TransactionStatus

	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal

	TxnId       string
	ClientTxnId string
	Search      string

	OrderBy string
}

// ParseSearchFilter validates the raw query parameters and builds the typed
// filter in one step. All checks run; errors are collected into a field-keyed
// map and an empty map means valid. Pure apart from the lenient payment-mode
// warning log.
func ParseSearchFilter(params map[string]string, loc *time.Location) (*SearchFilter, map[string]string) {
	logger := config.GetLogger()
	errors := map[string]string{}

	f := &SearchFilter{
		DateFilter:  strings.TrimSpace(params["date_filter"]),
		TxnId:       strings.TrimSpace(params["txn_id"]),
		ClientTxnId: strings.TrimSpace(params["client_txn_id"]),
		OrderBy:     strings.TrimSpace(params["order_by"]),
	}

	f.MerchantCode = strings.TrimSpace(params["merchant_code"])
	if f.MerchantCode == "" {
		f.MerchantCode = strings.TrimSpace(params["client_code"])
	}

	f.Search = strings.TrimSpace(params["search"])
	if f.Search == "" {
		f.Search = strings.TrimSpace(params["q"])
	}

	// Date format checks.
	var fromDay, toDay time.Time
	if raw := strings.TrimSpace(params["date_from"]); raw != "" {
		d, err := time.ParseInLocation(dateParamLayout, raw, loc)
		if err != nil {
			errors["date_from"] = "Invalid date format. Use YYYY-MM-DD"
		} else {
			fromDay = d
			from := StartOfDay(d)
			f.DateFrom = &from
		}
	}
	if raw := strings.TrimSpace(params["date_to"]); raw != "" {
		d, err := time.ParseInLocation(dateParamLayout, raw, loc)
		if err != nil {
			errors["date_to"] = "Invalid date format. Use YYYY-MM-DD"
		} else {
			toDay = d
			to := EndOfDay(d)
			f.DateTo = &to
		}
	}
	if f.DateFrom != nil && f.DateTo != nil && fromDay.After(toDay) {
		errors["date_range"] = "From date cannot be after To date"
	}

	// Amount bounds.
	if raw := strings.TrimSpace(params["min_amount"]); raw != "" {
		if d, ok := utils.ParseDecimal(raw); ok {
			f.MinAmount = &d
		} else {
			errors["min_amount"] = "Invalid minimum amount"
		}
	}
	if raw := strings.TrimSpace(params["max_amount"]); raw != "" {
		if d, ok := utils.ParseDecimal(raw); ok {
			f.MaxAmount = &d
		} else {
			errors["max_amount"] = "Invalid maximum amount"
		}
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		errors["amount_range"] = "Minimum amount cannot be greater than maximum amount"
	}

	// Status allow-list (ALL sentinel means unrestricted).
	if raw := strings.TrimSpace(params["status"]); raw != "" && raw != FilterValueAll {
		var invalid []string
		for _, part := range strings.Split(raw, ",") {
			status := TransactionStatus(strings.ToUpper(strings.TrimSpace(part)))
			if status == "" {
				continue
			}
			if !ValidStatuses[status] {
				invalid = append(invalid, string(status))
				continue
			}
			f.Statuses = append(f.Statuses, status)
		}
		if len(invalid) > 0 {
			errors["status"] = "Invalid status values: " + strings.Join(invalid, ", ") +
				". Must be one of: SUCCESS, FAILED, PENDING, ABORTED"
			f.Statuses = nil
		}
	}

	// Payment modes are validated leniently: unknown values are logged and
	// kept as passthrough matches, never rejected.
	if raw := strings.TrimSpace(params["payment_mode"]); raw != "" && raw != FilterValueAll {
		for _, part := range strings.Split(raw, ",") {
			mode := strings.TrimSpace(part)
			if mode == "" {
				continue
			}
			f.PaymentModes = append(f.PaymentModes, resolvePaymentMode(mode, logger))
		}
	}

	if len(errors) > 0 {
		logger.WithFields(logrus.Fields{
			"module": "models",
			"errors": errors,
		}).Warn("filter validation failed")
		return nil, errors
	}
	return f, errors
}

func resolvePaymentMode(raw string, logger *logrus.Logger) PaymentModeFilter {
	upper := strings.ToUpper(raw)
	if canonical, ok := PaymentModeAliases[upper]; ok {
		return PaymentModeFilter{Raw: raw, Canonical: canonical, Recognized: true}
	}
	if knownPaymentModes[upper] {
		return PaymentModeFilter{Raw: raw, Canonical: raw, Recognized: true}
	}
	logger.WithField("payment_mode", raw).Warn("unrecognized payment mode; matching verbatim")
	return PaymentModeFilter{Raw: raw, Canonical: raw, Recognized: false}
}

// Summary renders a human-readable description of the applied filters for
// inclusion in list responses.
func (f *SearchFilter) Summary(now time.Time) string {
	var parts []string

	switch {
	case f.DateFrom != nil && f.DateTo != nil:
		from := f.DateFrom.Format(dateParamLayout)
		to := f.DateTo.Format(dateParamLayout)
		if from == to {
			parts = append(parts, "Date: "+from)
		} else {
			parts = append(parts, "From "+from+" to "+to)
		}
	case f.DateFrom != nil:
		parts = append(parts, "From "+f.DateFrom.Format(dateParamLayout))
	case f.DateTo != nil:
		parts = append(parts, "Until "+f.DateTo.Format(dateParamLayout))
	default:
		parts = append(parts, "Date: "+now.Format(dateParamLayout)+" (Today)")
	}

	if f.MerchantCode != "" && f.MerchantCode != FilterValueAll {
		parts = append(parts, "Merchant: "+f.MerchantCode)
	}
	if len(f.PaymentModes) > 0 {
		modes := make([]string, len(f.PaymentModes))
		for i, m := range f.PaymentModes {
			modes[i] = m.Raw
		}
		parts = append(parts, "Payment mode: "+strings.Join(modes, ","))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		parts = append(parts, "Status: "+strings.Join(statuses, ","))
	}
	switch {
	case f.MinAmount != nil && f.MaxAmount != nil:
		parts = append(parts, "Amount: "+f.MinAmount.String()+" - "+f.MaxAmount.String())
	case f.MinAmount != nil:
		parts = append(parts, "Amount >= "+f.MinAmount.String())
	case f.MaxAmount != nil:
		parts = append(parts, "Amount <= "+f.MaxAmount.String())
	}
	if f.TxnId != "" {
		parts = append(parts, "Transaction ID: "+f.TxnId)
	} else if f.ClientTxnId != "" {
		parts = append(parts, "Client Transaction ID: "+f.ClientTxnId)
	}

	return strings.Join(parts, " | ")
}
