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

const insertExpenseQuery = `INSERT INTO expenses (id, category, description, amount, date, session, created_at, updated_at)
    VALUES (:id, :category, :description, :amount, :date, :session, :created_at, :updated_at)`

// ExpenseRepository manages persistence for expense records.
type ExpenseRepository struct {
	db *sqlx.DB
}

// NewExpenseRepository constructs an ExpenseRepository.
func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ListBySession returns every active expense in the session.
func (r *ExpenseRepository) ListBySession(ctx context.Context, session string) ([]models.Expense, error) {
	const query = `SELECT id, category, description, amount, date, session, created_at, updated_at
        FROM expenses WHERE session = $1 ORDER BY date DESC, id DESC`
	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, session); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// FindByID fetches an expense by ID.
func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	const query = `SELECT id, category, description, amount, date, session, created_at, updated_at FROM expenses WHERE id = $1`
	var expense models.Expense
	if err := r.db.GetContext(ctx, &expense, query, id); err != nil {
		return nil, err
	}
	return &expense, nil
}

// Create inserts a new expense record.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, insertExpenseQuery, expense); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// Update replaces the stored expense matching the same id.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().UTC()
	const query = `UPDATE expenses SET category = :category, description = :description, amount = :amount, date = :date, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, expense)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountBySession returns how many active expenses reference the session.
func (r *ExpenseRepository) CountBySession(ctx context.Context, session string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM expenses WHERE session = $1", session); err != nil {
		return 0, fmt.Errorf("count expenses by session: %w", err)
	}
	return count, nil
}
