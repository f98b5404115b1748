package models

import (
	"time"

	"github.com/lib/pq"
)

// Student represents a learner enrolled for one academic session.
// The session is immutable once the record is created.
type Student struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Class      string `db:"class" json:"class"`
	Session    string `db:"session" json:"session"`
	FatherName string `db:"father_name" json:"father_name"`
	MotherName string `db:"mother_name" json:"mother_name"`
	Phone      string `db:"phone" json:"phone"`
	Address    string `db:"address" json:"address"`

	// FeeStructureIDs is the ordered set of fee structures billed to
	// the student. TotalClassFees overrides the structure sum, but only
	// when ClassFeeID matches the first reference (see ledger rules).
	FeeStructureIDs pq.StringArray `db:"fee_structure_ids" json:"fee_structure_ids"`
	TotalClassFees  float64        `db:"total_class_fees" json:"total_class_fees"`
	ClassFeeID      string         `db:"class_fee_id" json:"class_fee_id"`
	// BackFees carries arrears from earlier sessions and is added to the
	// total unconditionally, even in override mode.
	BackFees float64 `db:"back_fees" json:"back_fees"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Session  string
	Class    string
	Search   string
	Page     int
	PageSize int
}

// StudentBalance is the derived financial view of one student.
type StudentBalance struct {
	Total float64 `json:"total"`
	Paid  float64 `json:"paid"`
	Due   float64 `json:"due"`
}
