package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
)

// ProfileRepository manages the singleton school profile row.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get fetches the school profile.
func (r *ProfileRepository) Get(ctx context.Context) (*models.SchoolProfile, error) {
	const query = `SELECT id, school_name, address, phone, email, sessions, current_session, fees_receipt_terms, slider_images, updated_at
        FROM school_profile LIMIT 1`
	var profile models.SchoolProfile
	if err := r.db.GetContext(ctx, &profile, query); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update replaces the stored profile.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.SchoolProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE school_profile SET school_name = :school_name, address = :address, phone = :phone, email = :email,
        sessions = :sessions, current_session = :current_session, fees_receipt_terms = :fees_receipt_terms, slider_images = :slider_images, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update school profile: %w", err)
	}
	return nil
}

// RenameSessionLinks rewrites the session label on every active record in
// one transaction, so a rename never strands rows under the old label.
func (r *ProfileRepository) RenameSessionLinks(ctx context.Context, oldLabel, newLabel string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session rename: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"students", "payments", "fee_structures", "expenses"} {
		query := fmt.Sprintf("UPDATE %s SET session = $1 WHERE session = $2", table)
		if _, err := tx.ExecContext(ctx, query, newLabel, oldLabel); err != nil {
			return fmt.Errorf("rename session in %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session rename: %w", err)
	}
	return nil
}

// SessionLinkCounts counts active records referencing the session across
// every entity collection. Trashed rows live in the trash table and are
// deliberately outside this scan.
func (r *ProfileRepository) SessionLinkCounts(ctx context.Context, session string) (models.SessionLinkCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE session = $1) AS students,
        (SELECT COUNT(*) FROM payments WHERE session = $1) AS payments,
        (SELECT COUNT(*) FROM fee_structures WHERE session = $1) AS fee_structures,
        (SELECT COUNT(*) FROM expenses WHERE session = $1) AS expenses`
	var counts models.SessionLinkCounts
	if err := r.db.GetContext(ctx, &counts, query, session); err != nil {
		return models.SessionLinkCounts{}, fmt.Errorf("count session links: %w", err)
	}
	return counts, nil
}
