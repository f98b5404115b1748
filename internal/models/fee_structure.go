package models

import "time"

// FeeStructure defines a billable category for one session. Amounts are
// never mutated once payments reference the structure; historical payment
// records keep their original value.
type FeeStructure struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Amount    float64   `db:"amount" json:"amount"`
	Session   string    `db:"session" json:"session"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
