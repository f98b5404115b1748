package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type trashRepository interface {
	List(ctx context.Context, typeFilter models.TrashType) ([]models.TrashItem, error)
	FindByID(ctx context.Context, id string) (*models.TrashItem, error)
	RestoreStudent(ctx context.Context, trashID string, student *models.Student) error
	RestorePayment(ctx context.Context, trashID string, payment *models.PaymentRecord) error
	RestoreExpense(ctx context.Context, trashID string, expense *models.Expense) error
	PermanentDelete(ctx context.Context, trashID string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type paymentFinder interface {
	FindByID(ctx context.Context, id string) (*models.PaymentRecord, error)
}

type expenseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Expense, error)
}

/// TrashService owns the recycle bin: listing, restore, permanent deletion
// and retention purge. Restore rejects with a conflict when a record with
// the snapshot's id is active again, so a restore never overwrites data.
type TrashService struct {
	repo     trashRepository
	students studentFinder
	payments paymentFinder
	expenses expenseFinder
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// TrashServiceParams groups constructor dependencies.
type TrashServiceParams struct {
	Repo     trashRepository
	Students studentFinder
	Payments paymentFinder
	Expenses expenseFinder
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// NewTrashService constructs the trash service.
func NewTrashService(params TrashServiceParams) *TrashService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &TrashService{
		repo:     params.Repo,
		students: params.Students,
		payments: params.Payments,
		expenses: params.Expenses,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   params.Logger,
		now:      time.Now,
	}
}

// List returns trash items, newest deletion first. An empty typeFilter
// returns everything; an unknown one is rejected.
func (s *TrashService) List(ctx context.Context, typeFilter models.TrashType) ([]models.TrashItem, error) {
	if typeFilter != "" && !models.ValidTrashType(typeFilter) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown trash type %q", typeFilter))
	}
	items, err := s.repo.List(ctx, typeFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trash")
	}
	return items, nil
}

// Get returns a single trash item.
func (s *TrashService) Get(ctx context.Context, id string) (*models.TrashItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trash item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trash item")
	}
	return item, nil
}

// Restore moves the snapshot back to its origin collection, unchanged, and
// removes the trash entry in the same transaction.
func (s *TrashService) Restore(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	switch item.Type {
	case models.TrashTypeStudent:
		var student models.Student
		if err := json.Unmarshal(item.Snapshot, &student); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt student snapshot")
		}
		if err := s.ensureAbsent(ctx, item.Type, student.ID); err != nil {
			return err
		}
		err = s.repo.RestoreStudent(ctx, item.ID, &student)
	case models.TrashTypePayment:
		var payment models.PaymentRecord
		if err := json.Unmarshal(item.Snapshot, &payment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt payment snapshot")
		}
		if err := s.ensureAbsent(ctx, item.Type, payment.ID); err != nil {
			return err
		}
		err = s.repo.RestorePayment(ctx, item.ID, &payment)
	case models.TrashTypeExpense:
		var expense models.Expense
		if err := json.Unmarshal(item.Snapshot, &expense); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt expense snapshot")
		}
		if err := s.ensureAbsent(ctx, item.Type, expense.ID); err != nil {
			return err
		}
		err = s.repo.RestoreExpense(ctx, item.ID, &expense)
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown trash type %q", item.Type))
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "trash item not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore trash item")
	}

	s.logger.Info("trash item restored", zap.String("trash_id", item.ID), zap.String("type", string(item.Type)))
	s.metrics.RecordTrashOperation("restore", string(item.Type))
	s.invalidateDashboards(ctx)
	return nil
}

// PermanentDelete erases the trash item for good. Deleting an id that is
// already gone succeeds, so retries and double-clicks are harmless.
func (s *TrashService) PermanentDelete(ctx context.Context, id string) error {
	if err := s.repo.PermanentDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to permanently delete trash item")
	}
	s.logger.Info("trash item permanently deleted", zap.String("trash_id", id))
	s.metrics.RecordTrashOperation("permanent_delete", "")
	return nil
}

// PurgeExpired erases trash items older than the retention window and
// returns how many were removed. Invoked by the background purge worker.
func (s *TrashService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	purged, err := s.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge trash")
	}
	if purged > 0 {
		s.logger.Info("trash purged", zap.Int64("items", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}

// ensureAbsent rejects a restore when a record with the snapshot's id is
// active again, e.g. after an id collision or a double restore race.
func (s *TrashService) ensureAbsent(ctx context.Context, trashType models.TrashType, originID string) error {
	var err error
	switch trashType {
	case models.TrashTypeStudent:
		_, err = s.students.FindByID(ctx, originID)
	case models.TrashTypePayment:
		_, err = s.payments.FindByID(ctx, originID)
	case models.TrashTypeExpense:
		_, err = s.expenses.FindByID(ctx, originID)
	}
	if err == nil {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an active record with id %s already exists", originID))
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check restore target")
}

func (s *TrashService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardKeyPrefix+":*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// NewPurgeJobID produces ids for queued purge sweeps.
func NewPurgeJobID() string {
	return uuid.NewString()
}
