package models

import "time"

// Expense categories used by the bookkeeping views.
const (
	ExpenseCategorySalary      = "Salary"
	ExpenseCategoryMaintenance = "Maintenance"
	ExpenseCategorySupplies    = "Supplies"
	ExpenseCategoryUtilities   = "Utilities"
	ExpenseCategoryTransport   = "Transport"
	ExpenseCategoryOther       = "Other"
)

// ValidExpenseCategory reports whether the category is a known one.
func ValidExpenseCategory(category string) bool {
	switch category {
	case ExpenseCategorySalary, ExpenseCategoryMaintenance, ExpenseCategorySupplies,
		ExpenseCategoryUtilities, ExpenseCategoryTransport, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is a school outgoing, independent of students, scoped to a session.
type Expense struct {
	ID          string    `db:"id" json:"id"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	Amount      float64   `db:"amount" json:"amount"`
	Date        time.Time `db:"date" json:"date"`
	Session     string    `db:"session" json:"session"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
