package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type fakePaymentRepo struct {
	payments map[string]models.PaymentRecord
	created  []models.PaymentRecord
	updated  []models.PaymentRecord
}

func newFakePaymentRepo(payments ...models.PaymentRecord) *fakePaymentRepo {
	repo := &fakePaymentRepo{payments: map[string]models.PaymentRecord{}}
	for _, p := range payments {
		repo.payments[p.ID] = p
	}
	return repo
}

func (f *fakePaymentRepo) ListBySession(_ context.Context, session string) ([]models.PaymentRecord, error) {
	var result []models.PaymentRecord
	for _, p := range f.payments {
		if p.Session == session {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id string) (*models.PaymentRecord, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.PaymentRecord) error {
	f.payments[payment.ID] = *payment
	f.created = append(f.created, *payment)
	return nil
}

func (f *fakePaymentRepo) Update(_ context.Context, payment *models.PaymentRecord) error {
	if _, ok := f.payments[payment.ID]; !ok {
		return sql.ErrNoRows
	}
	f.payments[payment.ID] = *payment
	f.updated = append(f.updated, *payment)
	return nil
}

func newPaymentService(repo *fakePaymentRepo, students *fakeStudentRepo, trash *fakeTrashMover) *PaymentService {
	return NewPaymentService(PaymentServiceParams{
		Repo:     repo,
		Students: students,
		Trash:    trash,
		NewID:    sequentialIDs("pay-"),
	})
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := newPaymentService(newFakePaymentRepo(), newFakeStudentRepo(), &fakeTrashMover{})

	for _, amount := range []float64{0, -50} {
		_, err := svc.Create(context.Background(), CreatePaymentRequest{
			StudentID: "s1", FeeStructureID: "f1", AmountPaid: amount, Date: "2025-04-10", Method: models.PaymentMethodCash,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErrors.FromError(err).Code)
	}
}

func TestCreatePaymentRejectsMissingFields(t *testing.T) {
	svc := newPaymentService(newFakePaymentRepo(), newFakeStudentRepo(), &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		FeeStructureID: "f1", AmountPaid: 100, Date: "2025-04-10", Method: models.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreatePaymentRejectsUnknownMethod(t *testing.T) {
	svc := newPaymentService(newFakePaymentRepo(), newFakeStudentRepo(), &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		StudentID: "s1", FeeStructureID: "f1", AmountPaid: 100, Date: "2025-04-10", Method: "Barter",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreatePaymentRejectsBadDate(t *testing.T) {
	svc := newPaymentService(newFakePaymentRepo(), newFakeStudentRepo(), &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		StudentID: "s1", FeeStructureID: "f1", AmountPaid: 100, Date: "10/04/2025", Method: models.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreatePaymentInheritsStudentSession(t *testing.T) {
	students := newFakeStudentRepo(models.Student{ID: "s1", Name: "Aarav", Session: "2025-2026"})
	repo := newFakePaymentRepo()
	svc := newPaymentService(repo, students, &fakeTrashMover{})

	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		StudentID: "s1", FeeStructureID: "f1", AmountPaid: 1500, Date: "2025-04-10", Method: models.PaymentMethodUPI,
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-2026", payment.Session)
	assert.NotEmpty(t, payment.ID)
	require.Len(t, repo.created, 1)
}

func TestCreatePaymentUnknownStudent(t *testing.T) {
	svc := newPaymentService(newFakePaymentRepo(), newFakeStudentRepo(), &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		StudentID: "ghost", FeeStructureID: "f1", AmountPaid: 100, Date: "2025-04-10", Method: models.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdatePaymentPreservesID(t *testing.T) {
	students := newFakeStudentRepo(models.Student{ID: "s1", Session: "2025-2026"})
	repo := newFakePaymentRepo(models.PaymentRecord{ID: "p1", StudentID: "s1", AmountPaid: 100, Session: "2025-2026"})
	svc := newPaymentService(repo, students, &fakeTrashMover{})

	payment, err := svc.Update(context.Background(), "p1", UpdatePaymentRequest{
		StudentID: "s1", FeeStructureID: "f2", AmountPaid: 250, Date: "2025-04-11", Method: models.PaymentMethodCheque,
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", payment.ID)
	assert.Equal(t, 250.0, payment.AmountPaid)
	require.Len(t, repo.updated, 1)
}

func TestSoftDeletePaymentDescribesAmount(t *testing.T) {
	repo := newFakePaymentRepo(models.PaymentRecord{ID: "p1", StudentID: "s1", AmountPaid: 1500, Session: "2025-2026"})
	trash := &fakeTrashMover{}
	svc := newPaymentService(repo, newFakeStudentRepo(), trash)

	item, err := svc.SoftDelete(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, models.TrashTypePayment, item.Type)
	assert.Equal(t, "Payment ₹1500", item.Description)
	assert.Equal(t, "p1", trash.originID)
}

func TestPaymentStatsOverFilteredRegister(t *testing.T) {
	repo := newFakePaymentRepo(
		models.PaymentRecord{ID: "p1", StudentID: "s1", AmountPaid: 100, Date: day("2025-04-10"), Session: "2025-2026"},
		models.PaymentRecord{ID: "p2", StudentID: "s2", AmountPaid: 40, Date: day("2025-04-09"), Session: "2025-2026"},
		models.PaymentRecord{ID: "p3", StudentID: "s1", AmountPaid: 60, Date: day("2025-04-08"), Session: "2025-2026"},
	)
	svc := newPaymentService(repo, newFakeStudentRepo(), &fakeTrashMover{})

	stats, err := svc.Stats(context.Background(), PaymentListRequest{Session: "2025-2026", StudentID: "s1"})

	require.NoError(t, err)
	assert.Equal(t, 160.0, stats.Total)
	assert.Equal(t, 2, stats.Count)
}
