package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type expenseRepository interface {
	ListBySession(ctx context.Context, session string) ([]models.Expense, error)
	FindByID(ctx context.Context, id string) (*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
}

// CreateExpenseRequest holds payload for recording an expense.
type CreateExpenseRequest struct {
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Session     string  `json:"session" validate:"required"`
}

// UpdateExpenseRequest edits an expense in place, preserving its id.
type UpdateExpenseRequest struct {
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"required"`
	Date        string  `json:"date" validate:"required"`
}

// ExpenseService handles the bookkeeping records for school outgoings.
type ExpenseService struct {
	repo      expenseRepository
	trash     trashMover
	profiles  profileGetter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	newID     IDGenerator
}

// ExpenseServiceParams groups constructor dependencies.
type ExpenseServiceParams struct {
	Repo     expenseRepository
	Trash    trashMover
	Profiles profileGetter
	Cache    *CacheService
	Validate *validator.Validate
	Logger   *zap.Logger
	NewID    IDGenerator
}

// NewExpenseService constructs the expense service.
func NewExpenseService(params ExpenseServiceParams) *ExpenseService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.NewID == nil {
		params.NewID = uuid.NewString
	}
	return &ExpenseService{
		repo:      params.Repo,
		trash:     params.Trash,
		profiles:  params.Profiles,
		cache:     params.Cache,
		validator: params.Validate,
		logger:    params.Logger,
		newID:     params.NewID,
	}
}

// List returns the session's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, session string) ([]models.Expense, error) {
	expenses, err := s.repo.ListBySession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expenses")
	}
	return expenses, nil
}

// Get returns a single expense.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense")
	}
	return expense, nil
}

// Create records a new expense in an existing session.
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expense payload")
	}
	date, err := s.validateFields(req.Category, req.Amount, req.Date)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if !profile.HasSession(req.Session) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSession, "")
	}

	expense := &models.Expense{
		ID:          s.newID(),
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
		Session:     req.Session,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expense")
	}
	s.invalidateDashboard(ctx, expense.Session)
	return expense, nil
}

// Update replaces the stored expense, preserving its id and session.
func (s *ExpenseService) Update(ctx context.Context, id string, req UpdateExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expense payload")
	}
	date, err := s.validateFields(req.Category, req.Amount, req.Date)
	if err != nil {
		return nil, err
	}

	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Category = req.Category
	expense.Description = req.Description
	expense.Amount = req.Amount
	expense.Date = date

	if err := s.repo.Update(ctx, expense); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update expense")
	}
	s.invalidateDashboard(ctx, expense.Session)
	return expense, nil
}

// SoftDelete moves the expense into the trash.
func (s *ExpenseService) SoftDelete(ctx context.Context, id string) (*models.TrashItem, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(expense)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot expense")
	}

	item := &models.TrashItem{
		ID:          s.newID(),
		Type:        models.TrashTypeExpense,
		Description: fmt.Sprintf("%s: %s", expense.Category, expense.Description),
		Snapshot:    snapshot,
		DeletedAt:   nowUTC(),
	}
	if err := s.trash.MoveToTrash(ctx, item, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move expense to trash")
	}
	s.logger.Info("expense moved to trash", zap.String("expense_id", id), zap.String("trash_id", item.ID))
	s.invalidateDashboard(ctx, expense.Session)
	return item, nil
}

func (s *ExpenseService) validateFields(category string, amount float64, rawDate string) (time.Time, error) {
	if amount <= 0 {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}
	if !models.ValidExpenseCategory(category) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown expense category %q", category))
	}
	date, err := time.Parse(dayLayout, rawDate)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return date, nil
}

func (s *ExpenseService) invalidateDashboard(ctx context.Context, session string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern(session)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
