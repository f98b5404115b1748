package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type feeStructureRepository interface {
	ListBySession(ctx context.Context, session string) ([]models.FeeStructure, error)
	FindByID(ctx context.Context, id string) (*models.FeeStructure, error)
	Create(ctx context.Context, fee *models.FeeStructure) error
	Update(ctx context.Context, fee *models.FeeStructure) error
	Delete(ctx context.Context, id string) error
}

type paymentsByFeeStructureCounter interface {
	CountByFeeStructure(ctx context.Context, feeStructureID string) (int, error)
}

// CreateFeeStructureRequest holds payload for defining a fee category.
type CreateFeeStructureRequest struct {
	Name    string  `json:"name" validate:"required"`
	Amount  float64 `json:"amount" validate:"required"`
	Session string  `json:"session" validate:"required"`
}

// UpdateFeeStructureRequest edits a fee category in place.
type UpdateFeeStructureRequest struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"required"`
}

// FeeStructureService manages the billable fee categories per session.
type FeeStructureService struct {
	repo      feeStructureRepository
	payments  paymentsByFeeStructureCounter
	profiles  profileGetter
	validator *validator.Validate
	logger    *zap.Logger
	newID     IDGenerator
}

// FeeStructureServiceParams groups constructor dependencies.
type FeeStructureServiceParams struct {
	Repo     feeStructureRepository
	Payments paymentsByFeeStructureCounter
	Profiles profileGetter
	Validate *validator.Validate
	Logger   *zap.Logger
	NewID    IDGenerator
}

// NewFeeStructureService constructs the fee structure service.
func NewFeeStructureService(params FeeStructureServiceParams) *FeeStructureService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.NewID == nil {
		params.NewID = uuid.NewString
	}
	return &FeeStructureService{
		repo:      params.Repo,
		payments:  params.Payments,
		profiles:  params.Profiles,
		validator: params.Validate,
		logger:    params.Logger,
		newID:     params.NewID,
	}
}

// List returns the fee structures defined for the session.
func (s *FeeStructureService) List(ctx context.Context, session string) ([]models.FeeStructure, error) {
	fees, err := s.repo.ListBySession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee structures")
	}
	return fees, nil
}

// Get returns a single fee structure.
func (s *FeeStructureService) Get(ctx context.Context, id string) (*models.FeeStructure, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee structure not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee structure")
	}
	return fee, nil
}

// Create defines a new fee category in an existing session.
func (s *FeeStructureService) Create(ctx context.Context, req CreateFeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee structure payload")
	}
	if req.Amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}

	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if !profile.HasSession(req.Session) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSession, "")
	}

	fee := &models.FeeStructure{
		ID:      s.newID(),
		Name:    req.Name,
		Amount:  req.Amount,
		Session: req.Session,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee structure")
	}
	return fee, nil
}

// Update edits the fee structure's name and amount. The session is never
// changed; existing payment records keep their original amounts regardless.
func (s *FeeStructureService) Update(ctx context.Context, id string, req UpdateFeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee structure payload")
	}
	if req.Amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}

	fee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fee.Name = req.Name
	fee.Amount = req.Amount

	if err := s.repo.Update(ctx, fee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee structure not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee structure")
	}
	return fee, nil
}

// Delete removes a fee structure. Blocked while active payments still
// reference it, so the payment register never points at a missing category.
func (s *FeeStructureService) Delete(ctx context.Context, id string) error {
	count, err := s.payments.CountByFeeStructure(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count linked payments")
	}
	if count > 0 {
		return appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("fee structure is referenced by %d payment(s)", count)),
			map[string]int{"payments": count},
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "fee structure not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee structure")
	}
	s.logger.Info("fee structure deleted", zap.String("fee_structure_id", id))
	return nil
}
