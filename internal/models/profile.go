package models

import (
	"time"

	"github.com/lib/pq"
)

// SchoolProfile is the singleton configuration record. Sessions are kept
// reverse-chronological; CurrentSession is always an element of Sessions.
type SchoolProfile struct {
	ID               string         `db:"id" json:"id"`
	SchoolName       string         `db:"school_name" json:"school_name"`
	Address          string         `db:"address" json:"address"`
	Phone            string         `db:"phone" json:"phone"`
	Email            string         `db:"email" json:"email"`
	Sessions         pq.StringArray `db:"sessions" json:"sessions"`
	CurrentSession   string         `db:"current_session" json:"current_session"`
	FeesReceiptTerms string         `db:"fees_receipt_terms" json:"fees_receipt_terms"`
	SliderImages     pq.StringArray `db:"slider_images" json:"slider_images"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// HasSession reports whether the label is registered.
func (p *SchoolProfile) HasSession(label string) bool {
	for _, s := range p.Sessions {
		if s == label {
			return true
		}
	}
	return false
}

// SessionLinkCounts lists records still referencing a session, by entity.
type SessionLinkCounts struct {
	Students      int `db:"students" json:"students"`
	Payments      int `db:"payments" json:"payments"`
	FeeStructures int `db:"fee_structures" json:"fee_structures"`
	Expenses      int `db:"expenses" json:"expenses"`
}

// Empty reports whether no entity references the session.
func (c SessionLinkCounts) Empty() bool {
	return c.Students == 0 && c.Payments == 0 && c.FeeStructures == 0 && c.Expenses == 0
}
