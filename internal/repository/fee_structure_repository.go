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

// FeeStructureRepository manages persistence for fee structures.
type FeeStructureRepository struct {
	db *sqlx.DB
}

// NewFeeStructureRepository constructs a FeeStructureRepository.
func NewFeeStructureRepository(db *sqlx.DB) *FeeStructureRepository {
	return &FeeStructureRepository{db: db}
}

// ListBySession returns every fee structure defined for the session.
func (r *FeeStructureRepository) ListBySession(ctx context.Context, session string) ([]models.FeeStructure, error) {
	const query = `SELECT id, name, amount, session, created_at, updated_at FROM fee_structures WHERE session = $1 ORDER BY name ASC`
	var fees []models.FeeStructure
	if err := r.db.SelectContext(ctx, &fees, query, session); err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return fees, nil
}

// FindByID fetches a fee structure by ID.
func (r *FeeStructureRepository) FindByID(ctx context.Context, id string) (*models.FeeStructure, error) {
	const query = `SELECT id, name, amount, session, created_at, updated_at FROM fee_structures WHERE id = $1`
	var fee models.FeeStructure
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Create inserts a new fee structure.
func (r *FeeStructureRepository) Create(ctx context.Context, fee *models.FeeStructure) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = now
	}
	fee.UpdatedAt = now
	const query = `INSERT INTO fee_structures (id, name, amount, session, created_at, updated_at)
        VALUES (:id, :name, :amount, :session, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee structure: %w", err)
	}
	return nil
}

// Update replaces the stored fee structure matching the same id.
func (r *FeeStructureRepository) Update(ctx context.Context, fee *models.FeeStructure) error {
	fee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fee_structures SET name = :name, amount = :amount, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, fee)
	if err != nil {
		return fmt.Errorf("update fee structure: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a fee structure. Fee structures are never soft-deleted;
// the service layer blocks deletion while payments reference them.
func (r *FeeStructureRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM fee_structures WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete fee structure: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountBySession returns how many fee structures reference the session.
func (r *FeeStructureRepository) CountBySession(ctx context.Context, session string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM fee_structures WHERE session = $1", session); err != nil {
		return 0, fmt.Errorf("count fee structures by session: %w", err)
	}
	return count, nil
}
