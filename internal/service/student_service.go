package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

// IDGenerator produces unique entity ids. Injected so tests can assert
// uniqueness and determinism; defaults to UUIDs.
type IDGenerator func() string

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListBySession(ctx context.Context, session string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type trashMover interface {
	MoveToTrash(ctx context.Context, item *models.TrashItem, originID string) error
}

type profileGetter interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
}

type feeStructureLister interface {
	ListBySession(ctx context.Context, session string) ([]models.FeeStructure, error)
}

type paymentsByStudentLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.PaymentRecord, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	Name            string   `json:"name" validate:"required"`
	Class           string   `json:"class" validate:"required"`
	Session         string   `json:"session" validate:"required"`
	FatherName      string   `json:"father_name"`
	MotherName      string   `json:"mother_name"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	FeeStructureIDs []string `json:"fee_structure_ids"`
	TotalClassFees  float64  `json:"total_class_fees" validate:"gte=0"`
	ClassFeeID      string   `json:"class_fee_id"`
	BackFees        float64  `json:"back_fees" validate:"gte=0"`
}

// UpdateStudentRequest holds payload for editing a student profile. The
// session is absent on purpose: a student's session never changes.
type UpdateStudentRequest struct {
	Name            string   `json:"name" validate:"required"`
	Class           string   `json:"class" validate:"required"`
	FatherName      string   `json:"father_name"`
	MotherName      string   `json:"mother_name"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	FeeStructureIDs []string `json:"fee_structure_ids"`
	TotalClassFees  float64  `json:"total_class_fees" validate:"gte=0"`
	ClassFeeID      string   `json:"class_fee_id"`
	BackFees        float64  `json:"back_fees" validate:"gte=0"`
}

// StudentService handles student lifecycle and balance queries.
type StudentService struct {
	repo      studentRepository
	fees      feeStructureLister
	payments  paymentsByStudentLister
	trash     trashMover
	profiles  profileGetter
	ledger    *LedgerService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	newID     IDGenerator
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Repo     studentRepository
	Fees     feeStructureLister
	Payments paymentsByStudentLister
	Trash    trashMover
	Profiles profileGetter
	Ledger   *LedgerService
	Cache    *CacheService
	Validate *validator.Validate
	Logger   *zap.Logger
	NewID    IDGenerator
}

// NewStudentService constructs the student service.
func NewStudentService(params StudentServiceParams) *StudentService {
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
	return &StudentService{
		repo:      params.Repo,
		fees:      params.Fees,
		payments:  params.Payments,
		trash:     params.Trash,
		profiles:  params.Profiles,
		ledger:    params.Ledger,
		cache:     params.Cache,
		validator: params.Validate,
		logger:    params.Logger,
		newID:     params.NewID,
	}
}

// List returns students and pagination metadata for one session.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student in an existing session.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.checkSession(ctx, req.Session); err != nil {
		return nil, err
	}

	student := &models.Student{
		ID:              s.newID(),
		Name:            req.Name,
		Class:           req.Class,
		Session:         req.Session,
		FatherName:      req.FatherName,
		MotherName:      req.MotherName,
		Phone:           req.Phone,
		Address:         req.Address,
		FeeStructureIDs: pq.StringArray(req.FeeStructureIDs),
		TotalClassFees:  req.TotalClassFees,
		ClassFeeID:      req.ClassFeeID,
		BackFees:        req.BackFees,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.invalidateDashboard(ctx, student.Session)
	return student, nil
}

// Update replaces the stored student. The whole record is rewritten; no
// partial-field merge happens.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	student := *current
	student.Name = req.Name
	student.Class = req.Class
	student.FatherName = req.FatherName
	student.MotherName = req.MotherName
	student.Phone = req.Phone
	student.Address = req.Address
	student.FeeStructureIDs = pq.StringArray(req.FeeStructureIDs)
	student.TotalClassFees = req.TotalClassFees
	student.ClassFeeID = req.ClassFeeID
	student.BackFees = req.BackFees

	if err := s.repo.Update(ctx, &student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.invalidateDashboard(ctx, student.Session)
	return &student, nil
}

// SoftDelete moves the student into the trash. Historical payments stay in
// the active store; they are not cascaded.
func (s *StudentService) SoftDelete(ctx context.Context, id string) (*models.TrashItem, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot student")
	}

	item := &models.TrashItem{
		ID:          s.newID(),
		Type:        models.TrashTypeStudent,
		Description: student.Name,
		Snapshot:    snapshot,
		DeletedAt:   nowUTC(),
	}
	if err := s.trash.MoveToTrash(ctx, item, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move student to trash")
	}
	s.logger.Info("student moved to trash", zap.String("student_id", id), zap.String("trash_id", item.ID))
	s.invalidateDashboard(ctx, student.Session)
	return item, nil
}

// Balance recomputes the student's total/paid/due from current store state.
func (s *StudentService) Balance(ctx context.Context, id string) (*models.StudentBalance, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fees, err := s.fees.ListBySession(ctx, student.Session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee structures")
	}
	payments, err := s.payments.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	balance := s.ledger.StudentBalance(*student, fees, payments)
	return &balance, nil
}

// FeeLineBalance recomputes the balance for one fee line of the student.
func (s *StudentService) FeeLineBalance(ctx context.Context, id, feeStructureID string) (*models.StudentBalance, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fees, err := s.fees.ListBySession(ctx, student.Session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee structures")
	}
	payments, err := s.payments.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	balance := s.ledger.FeeLineBalance(*student, feeStructureID, fees, payments)
	return &balance, nil
}

func (s *StudentService) checkSession(ctx context.Context, session string) error {
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if !profile.HasSession(session) {
		return appErrors.Clone(appErrors.ErrUnknownSession, "")
	}
	return nil
}

func (s *StudentService) invalidateDashboard(ctx context.Context, session string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern(session)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
