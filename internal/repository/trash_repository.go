package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
)

const insertTrashQuery = `INSERT INTO trash_items (id, type, description, snapshot, deleted_at)
    VALUES (:id, :type, :description, :snapshot, :deleted_at)`

var trashOriginTables = map[models.TrashType]string{
	models.TrashTypeStudent: "students",
	models.TrashTypePayment: "payments",
	models.TrashTypeExpense: "expenses",
}

// TrashRepository owns the recycle-bin table and the transactions that move
// records between the active collections and the trash. Soft delete and
// restore are each a single transaction, so callers never observe a record
// in both stores or in neither.
type TrashRepository struct {
	db *sqlx.DB
}

// NewTrashRepository constructs a TrashRepository.
func NewTrashRepository(db *sqlx.DB) *TrashRepository {
	return &TrashRepository{db: db}
}

// List returns trash items, newest deletion first, optionally filtered by type.
func (r *TrashRepository) List(ctx context.Context, typeFilter models.TrashType) ([]models.TrashItem, error) {
	query := `SELECT id, type, description, snapshot, deleted_at FROM trash_items`
	args := []interface{}{}
	if typeFilter != "" {
		query += " WHERE type = $1"
		args = append(args, typeFilter)
	}
	query += " ORDER BY deleted_at DESC"

	var items []models.TrashItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	return items, nil
}

// FindByID fetches a trash item by its own id.
func (r *TrashRepository) FindByID(ctx context.Context, id string) (*models.TrashItem, error) {
	const query = `SELECT id, type, description, snapshot, deleted_at FROM trash_items WHERE id = $1`
	var item models.TrashItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// MoveToTrash atomically removes the origin row and inserts the trash
// envelope. Returns sql.ErrNoRows when the origin row does not exist.
func (r *TrashRepository) MoveToTrash(ctx context.Context, item *models.TrashItem, originID string) error {
	table, ok := trashOriginTables[item.Type]
	if !ok {
		return fmt.Errorf("unknown trash type %q", item.Type)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin soft delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), originID)
	if err != nil {
		return fmt.Errorf("remove %s row: %w", table, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.NamedExecContext(ctx, insertTrashQuery, item); err != nil {
		return fmt.Errorf("insert trash item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit soft delete: %w", err)
	}
	return nil
}

// RestoreStudent atomically deletes the trash row and re-inserts the snapshot.
func (r *TrashRepository) RestoreStudent(ctx context.Context, trashID string, student *models.Student) error {
	return r.restoreInto(ctx, trashID, insertStudentQuery, student)
}

// RestorePayment atomically deletes the trash row and re-inserts the snapshot.
func (r *TrashRepository) RestorePayment(ctx context.Context, trashID string, payment *models.PaymentRecord) error {
	return r.restoreInto(ctx, trashID, insertPaymentQuery, payment)
}

// RestoreExpense atomically deletes the trash row and re-inserts the snapshot.
func (r *TrashRepository) RestoreExpense(ctx context.Context, trashID string, expense *models.Expense) error {
	return r.restoreInto(ctx, trashID, insertExpenseQuery, expense)
}

func (r *TrashRepository) restoreInto(ctx context.Context, trashID string, insertQuery string, entity interface{}) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "DELETE FROM trash_items WHERE id = $1", trashID)
	if err != nil {
		return fmt.Errorf("remove trash item: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.NamedExecContext(ctx, insertQuery, entity); err != nil {
		return fmt.Errorf("reinsert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	return nil
}

// PermanentDelete erases a trash item. Deleting an absent id is a no-op.
func (r *TrashRepository) PermanentDelete(ctx context.Context, trashID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM trash_items WHERE id = $1", trashID); err != nil {
		return fmt.Errorf("permanent delete: %w", err)
	}
	return nil
}

// PurgeOlderThan erases trash items deleted before the cutoff and returns
// how many were removed. Used by the retention worker.
func (r *TrashRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM trash_items WHERE deleted_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge trash: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge trash: %w", err)
	}
	return affected, nil
}
