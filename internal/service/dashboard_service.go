package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type expensesBySessionLister interface {
	ListBySession(ctx context.Context, session string) ([]models.Expense, error)
}

type paymentsBySessionLister interface {
	ListBySession(ctx context.Context, session string) ([]models.PaymentRecord, error)
}

// DashboardService computes the session overview. Results are cached in
// Redis with a short TTL; every mutation path invalidates the session's
// entry, so a stale read can only survive for the TTL after a crash.
type DashboardService struct {
	students studentRepository
	fees     feeStructureLister
	payments paymentsBySessionLister
	expenses expensesBySessionLister
	ledger   *LedgerService
	cache    *CacheService
	logger   *zap.Logger
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students studentRepository
	Fees     feeStructureLister
	Payments paymentsBySessionLister
	Expenses expensesBySessionLister
	Ledger   *LedgerService
	Cache    *CacheService
	Logger   *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Ledger == nil {
		params.Ledger = NewLedgerService()
	}
	return &DashboardService{
		students: params.Students,
		fees:     params.Fees,
		payments: params.Payments,
		expenses: params.Expenses,
		ledger:   params.Ledger,
		cache:    params.Cache,
		logger:   params.Logger,
	}
}

// Stats returns the session overview, from cache when possible.
func (s *DashboardService) Stats(ctx context.Context, session string) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.GetDashboard(ctx, session, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx, session)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, session, stats); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context, session string) (*models.DashboardStats, error) {
	students, err := s.students.ListBySession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	fees, err := s.fees.ListBySession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee structures")
	}
	payments, err := s.payments.ListBySession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	expenses, err := s.expenses.ListBySession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expenses")
	}

	stats := &models.DashboardStats{Session: session, Students: len(students)}

	byClass := make(map[string]*models.ClassCollection)
	for _, student := range students {
		balance := s.ledger.StudentBalance(student, fees, payments)
		stats.TotalFees += balance.Total
		stats.TotalCollected += balance.Paid
		stats.TotalDue += balance.Due

		entry, ok := byClass[student.Class]
		if !ok {
			entry = &models.ClassCollection{Class: student.Class}
			byClass[student.Class] = entry
		}
		entry.Students++
		entry.Total += balance.Total
		entry.Paid += balance.Paid
		entry.Due += balance.Due
	}

	collection := s.ledger.CollectionStats(payments)
	stats.TodayCollection = collection.TodayAmount
	stats.PaidPercentage = s.ledger.PaidPercentage(stats.TotalCollected, stats.TotalFees)

	for _, expense := range expenses {
		stats.TotalExpenses += expense.Amount
	}
	stats.NetBalance = stats.TotalCollected - stats.TotalExpenses

	stats.ByClass = make([]models.ClassCollection, 0, len(byClass))
	for _, entry := range byClass {
		stats.ByClass = append(stats.ByClass, *entry)
	}
	sort.Slice(stats.ByClass, func(i, j int) bool {
		return stats.ByClass[i].Class < stats.ByClass[j].Class
	})

	return stats, nil
}
