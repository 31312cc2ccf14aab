package models

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusAborted TransactionStatus = "ABORTED"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleMerchant UserRole = "MERCHANT"
)

// FilterValueAll is the sentinel meaning "do not restrict on this field".
const FilterValueAll = "ALL"

// ValidStatuses is the status filter allow-list.
var ValidStatuses = map[TransactionStatus]bool{
	TransactionStatusSuccess: true,
	TransactionStatusFailed:  true,
	TransactionStatusPending: true,
	TransactionStatusAborted: true,
}

// PaymentModeAliases maps common filter abbreviations to the strings actually
// stored in the transaction table. The stored values are loosely normalized
// upstream, so matching stays case-insensitive and unknown input is passed
// through verbatim instead of being rejected.
var PaymentModeAliases = map[string]string{
	"UPI":         "UPI",
	"CC":          "Credit Card",
	"DC":          "Debit Card",
	"NB":          "Net Banking",
	"WALLET":      "WALLET",
	"INTENT":      "UPI INTENT",
	"CASH":        "CASH",
	"NEFT":        "NEFT",
	"RUPAY":       "Rupay Card",
	"RUPAYCREDIT": "RuPayCreditCard",
	"BHIM_UPI_QR": "BHIM UPI QR",
	"BHIM":        "BHIM UPI QR",
}

// knownPaymentModes is the set used by the lenient validator to decide
// whether to log an "unrecognized mode" warning. Membership is advisory only.
var knownPaymentModes = map[string]bool{
	"BHIM UPI QR":     true,
	"CASH":            true,
	"CREDIT CARD":     true,
	"DEBIT CARD":      true,
	"NEFT":            true,
	"NET BANKING":     true,
	"RUPAY CARD":      true,
	"RUPAYCREDITCARD": true,
	"UPI":             true,
	"UPI INTENT":      true,
	"WALLET":          true,
	"CC":              true,
	"DC":              true,
	"NB":              true,
	"INTENT":          true,
	"RUPAY":           true,
	"RUPAYCREDIT":     true,
	"BHIM_UPI_QR":     true,
	"BHIM":            true,
}

// validSortKeys is the order_by allow-list. Anything else falls back to
// the default sort; arbitrary sort expressions never reach the database.
var validSortKeys = map[string]string{
	"trans_date":   "trans_date ASC",
	"-trans_date":  "trans_date DESC",
	"paid_amount":  "paid_amount ASC",
	"-paid_amount": "paid_amount DESC",
	"status":       "status ASC",
	"-status":      "status DESC",
	"client_code":  "client_code ASC",
	"-client_code": "client_code DESC",
}

const defaultSortKey = "-trans_date"
