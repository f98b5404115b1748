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

type paymentRepository interface {
	ListBySession(ctx context.Context, session string) ([]models.PaymentRecord, error)
	FindByID(ctx context.Context, id string) (*models.PaymentRecord, error)
	Create(ctx context.Context, payment *models.PaymentRecord) error
	Update(ctx context.Context, payment *models.PaymentRecord) error
}

type paymentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListBySession(ctx context.Context, session string) ([]models.Student, error)
}

// CreatePaymentRequest holds payload for recording a payment. The amount
// carries no validator tag; non-positive values map to the dedicated
// invalid-amount error instead of a generic validation failure.
type CreatePaymentRequest struct {
	StudentID      string  `json:"student_id" validate:"required"`
	FeeStructureID string  `json:"fee_structure_id" validate:"required"`
	AmountPaid     float64 `json:"amount_paid"`
	Date           string  `json:"date" validate:"required"`
	Method         string  `json:"method" validate:"required"`
}

// UpdatePaymentRequest edits a payment in place, preserving its id.
type UpdatePaymentRequest struct {
	StudentID      string  `json:"student_id" validate:"required"`
	FeeStructureID string  `json:"fee_structure_id" validate:"required"`
	AmountPaid     float64 `json:"amount_paid"`
	Date           string  `json:"date" validate:"required"`
	Method         string  `json:"method" validate:"required"`
}

// PaymentListRequest narrows the payment register.
type PaymentListRequest struct {
	Session   string
	StudentID string
	From      string
	To        string
	Search    string
}

// PaymentService handles the payment lifecycle and register queries.
type PaymentService struct {
	repo      paymentRepository
	students  paymentStudentRepository
	trash     trashMover
	ledger    *LedgerService
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	newID     IDGenerator
}

// PaymentServiceParams groups constructor dependencies.
type PaymentServiceParams struct {
	Repo     paymentRepository
	Students paymentStudentRepository
	Trash    trashMover
	Ledger   *LedgerService
	Cache    *CacheService
	Metrics  *MetricsService
	Validate *validator.Validate
	Logger   *zap.Logger
	NewID    IDGenerator
}

// NewPaymentService constructs the payment service.
func NewPaymentService(params PaymentServiceParams) *PaymentService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.NewID == nil {
		params.NewID = uuid.NewString
	}
	if params.Ledger == nil {
		params.Ledger = NewLedgerService()
	}
	return &PaymentService{
		repo:      params.Repo,
		students:  params.Students,
		trash:     params.Trash,
		ledger:    params.Ledger,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: params.Validate,
		logger:    params.Logger,
		newID:     params.NewID,
	}
}

// List returns the filtered, ordered payment register for one session.
// Filtering runs in memory over the active set so the listing always
// reflects the latest mutations.
func (s *PaymentService) List(ctx context.Context, req PaymentListRequest) ([]models.PaymentRecord, error) {
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListBySession(ctx, req.Session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	students, err := s.students.ListBySession(ctx, req.Session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	return s.ledger.FilterPayments(payments, students, filter), nil
}

// Get returns a single payment record.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create records a new payment. The session is inherited from the student;
// non-positive amounts and unknown methods are rejected before any write.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.PaymentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	payment, err := s.buildRecord(ctx, req.StudentID, req.FeeStructureID, req.AmountPaid, req.Date, req.Method)
	if err != nil {
		return nil, err
	}
	payment.ID = s.newID()

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	s.metrics.RecordPayment(payment.AmountPaid)
	s.invalidateDashboard(ctx, payment.Session)
	return payment, nil
}

// Update replaces the stored payment, preserving its id.
func (s *PaymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.PaymentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payment, err := s.buildRecord(ctx, req.StudentID, req.FeeStructureID, req.AmountPaid, req.Date, req.Method)
	if err != nil {
		return nil, err
	}
	payment.ID = current.ID
	payment.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	s.invalidateDashboard(ctx, payment.Session)
	return payment, nil
}

// SoftDelete moves the payment into the trash.
func (s *PaymentService) SoftDelete(ctx context.Context, id string) (*models.TrashItem, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(payment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot payment")
	}

	item := &models.TrashItem{
		ID:          s.newID(),
		Type:        models.TrashTypePayment,
		Description: fmt.Sprintf("Payment ₹%g", payment.AmountPaid),
		Snapshot:    snapshot,
		DeletedAt:   nowUTC(),
	}
	if err := s.trash.MoveToTrash(ctx, item, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move payment to trash")
	}
	s.logger.Info("payment moved to trash", zap.String("payment_id", id), zap.String("trash_id", item.ID))
	s.invalidateDashboard(ctx, payment.Session)
	return item, nil
}

// Stats aggregates the filtered register: overall total, today's
// collection, and the record count.
func (s *PaymentService) Stats(ctx context.Context, req PaymentListRequest) (*models.CollectionStats, error) {
	payments, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}
	stats := s.ledger.CollectionStats(payments)
	return &stats, nil
}

func (s *PaymentService) buildRecord(ctx context.Context, studentID, feeStructureID string, amount float64, date, method string) (*models.PaymentRecord, error) {
	if amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}
	if !models.ValidPaymentMethod(method) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown payment method %q", method))
	}

	parsedDate, err := time.Parse(dayLayout, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	return &models.PaymentRecord{
		StudentID:      studentID,
		FeeStructureID: feeStructureID,
		AmountPaid:     amount,
		Date:           parsedDate,
		Method:         method,
		Session:        student.Session,
	}, nil
}

func (s *PaymentService) buildFilter(req PaymentListRequest) (models.PaymentFilter, error) {
	filter := models.PaymentFilter{StudentID: req.StudentID, Search: req.Search}
	if req.From != "" {
		from, err := time.Parse(dayLayout, req.From)
		if err != nil {
			return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from must be YYYY-MM-DD")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(dayLayout, req.To)
		if err != nil {
			return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "to must be YYYY-MM-DD")
		}
		filter.To = &to
	}
	return filter, nil
}

func (s *PaymentService) invalidateDashboard(ctx context.Context, session string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern(session)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
