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

type fakeFeeStructureRepo struct {
	fees    map[string]models.FeeStructure
	deleted []string
}

func (f *fakeFeeStructureRepo) ListBySession(_ context.Context, session string) ([]models.FeeStructure, error) {
	var result []models.FeeStructure
	for _, fee := range f.fees {
		if fee.Session == session {
			result = append(result, fee)
		}
	}
	return result, nil
}

func (f *fakeFeeStructureRepo) FindByID(_ context.Context, id string) (*models.FeeStructure, error) {
	fee, ok := f.fees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &fee, nil
}

func (f *fakeFeeStructureRepo) Create(_ context.Context, fee *models.FeeStructure) error {
	f.fees[fee.ID] = *fee
	return nil
}

func (f *fakeFeeStructureRepo) Update(_ context.Context, fee *models.FeeStructure) error {
	if _, ok := f.fees[fee.ID]; !ok {
		return sql.ErrNoRows
	}
	f.fees[fee.ID] = *fee
	return nil
}

func (f *fakeFeeStructureRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.fees[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.fees, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePaymentCounter struct {
	counts map[string]int
}

func (f *fakePaymentCounter) CountByFeeStructure(_ context.Context, feeStructureID string) (int, error) {
	return f.counts[feeStructureID], nil
}

func newFeeStructureService(repo *fakeFeeStructureRepo, counter *fakePaymentCounter) *FeeStructureService {
	if counter == nil {
		counter = &fakePaymentCounter{counts: map[string]int{}}
	}
	return NewFeeStructureService(FeeStructureServiceParams{
		Repo:     repo,
		Payments: counter,
		Profiles: &fakeProfileGetter{profile: models.SchoolProfile{
			Sessions:       []string{"2025-2026"},
			CurrentSession: "2025-2026",
		}},
		NewID: sequentialIDs("fee-"),
	})
}

func TestCreateFeeStructureRejectsNonPositiveAmount(t *testing.T) {
	svc := newFeeStructureService(&fakeFeeStructureRepo{fees: map[string]models.FeeStructure{}}, nil)

	_, err := svc.Create(context.Background(), CreateFeeStructureRequest{
		Name: "Tuition Fee", Amount: -100, Session: "2025-2026",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErr.Code)
}

func TestCreateFeeStructureRejectsUnknownSession(t *testing.T) {
	svc := newFeeStructureService(&fakeFeeStructureRepo{fees: map[string]models.FeeStructure{}}, nil)

	_, err := svc.Create(context.Background(), CreateFeeStructureRequest{
		Name: "Tuition Fee", Amount: 1200, Session: "2019-2020",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnknownSession.Code, appErr.Code)
}

func TestCreateFeeStructurePersists(t *testing.T) {
	repo := &fakeFeeStructureRepo{fees: map[string]models.FeeStructure{}}
	svc := newFeeStructureService(repo, nil)

	fee, err := svc.Create(context.Background(), CreateFeeStructureRequest{
		Name: "Exam Fee", Amount: 500, Session: "2025-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "fee-1", fee.ID)
	assert.Contains(t, repo.fees, "fee-1")
}

func TestUpdateFeeStructureKeepsSession(t *testing.T) {
	repo := &fakeFeeStructureRepo{fees: map[string]models.FeeStructure{
		"f1": {ID: "f1", Name: "Tuition Fee", Amount: 1200, Session: "2025-2026"},
	}}
	svc := newFeeStructureService(repo, nil)

	fee, err := svc.Update(context.Background(), "f1", UpdateFeeStructureRequest{Name: "Tuition", Amount: 1400})
	require.NoError(t, err)
	assert.Equal(t, 1400.0, fee.Amount)
	assert.Equal(t, "2025-2026", fee.Session)
}

func TestDeleteFeeStructureBlockedByPayments(t *testing.T) {
	repo := &fakeFeeStructureRepo{fees: map[string]models.FeeStructure{
		"f1": {ID: "f1", Name: "Tuition Fee", Amount: 1200, Session: "2025-2026"},
	}}
	counter := &fakePaymentCounter{counts: map[string]int{"f1": 4}}
	svc := newFeeStructureService(repo, counter)

	err := svc.Delete(context.Background(), "f1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, map[string]int{"payments": 4}, appErr.Details)
	assert.Contains(t, repo.fees, "f1")
}

func TestDeleteFeeStructureWithoutPayments(t *testing.T) {
	repo := &fakeFeeStructureRepo{fees: map[string]models.FeeStructure{
		"f1": {ID: "f1", Name: "Tuition Fee", Amount: 1200, Session: "2025-2026"},
	}}
	svc := newFeeStructureService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "f1"))
	assert.Equal(t, []string{"f1"}, repo.deleted)
}
