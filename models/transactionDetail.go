package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDetail mirrors the legacy transaction_detail table owned by the
// payment pipeline. This service only reads it: rows are created and mutated
// elsewhere as settlement/refund/chargeback events land, and the table is
// deliberately excluded from MigrateTable.
type TransactionDetail struct {
	TxnId             string           `gorm:"column:txn_id;primaryKey;size:64" json:"txn_id"`
	ClientCode        string           `gorm:"column:client_code;size:255;index" json:"client_code"`
	ClientName        string           `gorm:"column:client_name;size:255" json:"client_name"`
	ClientTxnId       string           `gorm:"column:client_txn_id;size:64;index" json:"client_txn_id"`
	TransDate         time.Time        `gorm:"column:trans_date;index" json:"trans_date"`
	TransCompleteDate *time.Time       `gorm:"column:trans_complete_date" json:"trans_complete_date"`
	Status            string           `gorm:"column:status;size:32;index" json:"status"`
	PaymentMode       string           `gorm:"column:payment_mode;size:255" json:"payment_mode"`
	PaidAmount        decimal.Decimal  `gorm:"column:paid_amount;type:decimal(15,2)" json:"paid_amount"`
	PayeeEmail        string           `gorm:"column:payee_email;size:255" json:"payee_email"`
	PayeeMob          string           `gorm:"column:payee_mob;size:32" json:"payee_mob"`
	PayeeFirstName    string           `gorm:"column:payee_first_name;size:128" json:"payee_first_name"`
	PayeeLstName      string           `gorm:"column:payee_lst_name;size:128" json:"payee_lst_name"`
	PgName            string           `gorm:"column:pg_name;size:128" json:"pg_name"`
	PgTxnId           string           `gorm:"column:pg_txn_id;size:64" json:"pg_txn_id"`
	BankTxnId         string           `gorm:"column:bank_txn_id;size:64" json:"bank_txn_id"`
	RespMsg           string           `gorm:"column:resp_msg;size:512" json:"resp_msg"`
	IsSettled         bool             `gorm:"column:is_settled" json:"is_settled"`
	SettlementDate    *time.Time       `gorm:"column:settlement_date" json:"settlement_date"`
	SettlementAmount  *decimal.Decimal `gorm:"column:settlement_amount;type:decimal(15,2)" json:"settlement_amount"`
	RefundDate        *time.Time       `gorm:"column:refund_date" json:"refund_date"`
	RefundStatusCode  string           `gorm:"column:refund_status_code;size:32" json:"refund_status_code"`
	RefundMessage     string           `gorm:"column:refund_message;size:512" json:"refund_message"`
	ChargeBackAmount  *decimal.Decimal `gorm:"column:charge_back_amount;type:decimal(15,2)" json:"charge_back_amount"`
	ChargeBackDate    *time.Time       `gorm:"column:charge_back_date" json:"charge_back_date"`
	ChargeBackStatus  string           `gorm:"column:charge_back_status;size:32" json:"charge_back_status"`
}

func (TransactionDetail) TableName() string {
	return "transaction_detail"
}
