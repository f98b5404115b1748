package models

import "time"

// Accepted payment methods.
const (
	PaymentMethodCash   = "Cash"
	PaymentMethodUPI    = "UPI"
	PaymentMethodOnline = "Online Transfer"
	PaymentMethodCheque = "Cheque"
)

// ValidPaymentMethod reports whether the method is one of the accepted set.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodOnline, PaymentMethodCheque:
		return true
	}
	return false
}

// PaymentRecord captures a single fee payment against one fee line.
// Date is a calendar day, not a timestamp.
type PaymentRecord struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	FeeStructureID string    `db:"fee_structure_id" json:"fee_structure_id"`
	AmountPaid     float64   `db:"amount_paid" json:"amount_paid"`
	Date           time.Time `db:"date" json:"date"`
	Method         string    `db:"method" json:"method"`
	Session        string    `db:"session" json:"session"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentFilter narrows payment listings. The date range is inclusive;
// To covers the whole calendar day.
type PaymentFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
	Search    string
}

// CollectionStats aggregates a payment set.
type CollectionStats struct {
	Total       float64 `json:"total"`
	TodayAmount float64 `json:"today_amount"`
	Count       int     `json:"count"`
}
