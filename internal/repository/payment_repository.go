package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
)

const insertPaymentQuery = `INSERT INTO payments (id, student_id, fee_structure_id, amount_paid, date, method, session, created_at, updated_at)
    VALUES (:id, :student_id, :fee_structure_id, :amount_paid, :date, :method, :session, :created_at, :updated_at)`

// PaymentRepository manages persistence for payment records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListBySession returns every active payment in the session. Balances and
// listings are always recomputed from this set; no derived value is stored.
func (r *PaymentRepository) ListBySession(ctx context.Context, session string) ([]models.PaymentRecord, error) {
	const query = `SELECT id, student_id, fee_structure_id, amount_paid, date, method, session, created_at, updated_at
        FROM payments WHERE session = $1 ORDER BY date DESC, id DESC`
	var payments []models.PaymentRecord
	if err := r.db.SelectContext(ctx, &payments, query, session); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// ListByStudent returns every active payment recorded for the student.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PaymentRecord, error) {
	const query = `SELECT id, student_id, fee_structure_id, amount_paid, date, method, session, created_at, updated_at
        FROM payments WHERE student_id = $1 ORDER BY date DESC, id DESC`
	var payments []models.PaymentRecord
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments by student: %w", err)
	}
	return payments, nil
}

// FindByID fetches a payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	const query = `SELECT id, student_id, fee_structure_id, amount_paid, date, method, session, created_at, updated_at
        FROM payments WHERE id = $1`
	var payment models.PaymentRecord
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.PaymentRecord) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, insertPaymentQuery, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update replaces the stored payment matching the same id, preserving it.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.PaymentRecord) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET student_id = :student_id, fee_structure_id = :fee_structure_id, amount_paid = :amount_paid, date = :date, method = :method, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountBySession returns how many active payments reference the session.
// Trashed payments live in the trash table and are never counted here.
func (r *PaymentRepository) CountBySession(ctx context.Context, session string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM payments WHERE session = $1", session); err != nil {
		return 0, fmt.Errorf("count payments by session: %w", err)
	}
	return count, nil
}

// CountByFeeStructure returns how many payments reference the fee structure.
func (r *PaymentRepository) CountByFeeStructure(ctx context.Context, feeStructureID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM payments WHERE fee_structure_id = $1", feeStructureID); err != nil {
		return 0, fmt.Errorf("count payments by fee structure: %w", err)
	}
	return count, nil
}
