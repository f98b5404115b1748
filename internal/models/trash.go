package models

import (
	"encoding/json"
	"time"
)

// TrashType identifies the collection a trashed snapshot came from.
type TrashType string

const (
	TrashTypeStudent TrashType = "STUDENT"
	TrashTypePayment TrashType = "PAYMENT"
	TrashTypeExpense TrashType = "EXPENSE"
)

// ValidTrashType reports whether the value is a known trash type.
func ValidTrashType(t TrashType) bool {
	switch t {
	case TrashTypeStudent, TrashTypePayment, TrashTypeExpense:
		return true
	}
	return false
}

// TrashItem wraps a soft-deleted entity. The snapshot is the full original
// record and must round-trip losslessly on restore. The id is independent
// of the origin entity id.
type TrashItem struct {
	ID          string          `db:"id" json:"id"`
	Type        TrashType       `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	Snapshot    json.RawMessage `db:"snapshot" json:"snapshot"`
	DeletedAt   time.Time       `db:"deleted_at" json:"deleted_at"`
}
