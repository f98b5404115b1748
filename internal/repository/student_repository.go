package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
)

const insertStudentQuery = `INSERT INTO students (id, name, class, session, father_name, mother_name, phone, address, fee_structure_ids, total_class_fees, class_fee_id, back_fees, created_at, updated_at)
    VALUES (:id, :name, :class, :session, :father_name, :mother_name, :phone, :address, :fee_structure_ids, :total_class_fees, :class_fee_id, :back_fees, :created_at, :updated_at)`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students in the session matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"session = $1"}
	args := []interface{}{filter.Session}

	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, class, session, father_name, mother_name, phone, address, fee_structure_ids, total_class_fees, class_fee_id, back_fees, created_at, updated_at
        FROM students WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, where, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListBySession returns every student in the session without paging.
// Used where filtering happens in memory (payment search, dashboards).
func (r *StudentRepository) ListBySession(ctx context.Context, session string) ([]models.Student, error) {
	const query = `SELECT id, name, class, session, father_name, mother_name, phone, address, fee_structure_ids, total_class_fees, class_fee_id, back_fees, created_at, updated_at
        FROM students WHERE session = $1 ORDER BY name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, session); err != nil {
		return nil, fmt.Errorf("list students by session: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, name, class, session, father_name, mother_name, phone, address, fee_structure_ids, total_class_fees, class_fee_id, back_fees, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update replaces the stored student matching the same id. The session
// column is deliberately not touched: a student belongs to exactly one
// session for its whole lifetime.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, class = :class, father_name = :father_name, mother_name = :mother_name, phone = :phone, address = :address,
        fee_structure_ids = :fee_structure_ids, total_class_fees = :total_class_fees, class_fee_id = :class_fee_id, back_fees = :back_fees, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountBySession returns how many active students reference the session.
func (r *StudentRepository) CountBySession(ctx context.Context, session string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students WHERE session = $1", session); err != nil {
		return 0, fmt.Errorf("count students by session: %w", err)
	}
	return count, nil
}
