package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type fakeExpenseRepo struct {
	expenses map[string]models.Expense
}

func (f *fakeExpenseRepo) ListBySession(_ context.Context, session string) ([]models.Expense, error) {
	var result []models.Expense
	for _, expense := range f.expenses {
		if expense.Session == session {
			result = append(result, expense)
		}
	}
	return result, nil
}

func (f *fakeExpenseRepo) FindByID(_ context.Context, id string) (*models.Expense, error) {
	expense, ok := f.expenses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &expense, nil
}

func (f *fakeExpenseRepo) Create(_ context.Context, expense *models.Expense) error {
	f.expenses[expense.ID] = *expense
	return nil
}

func (f *fakeExpenseRepo) Update(_ context.Context, expense *models.Expense) error {
	if _, ok := f.expenses[expense.ID]; !ok {
		return sql.ErrNoRows
	}
	f.expenses[expense.ID] = *expense
	return nil
}

func newExpenseService(repo *fakeExpenseRepo, trash *fakeTrashMover) *ExpenseService {
	return NewExpenseService(ExpenseServiceParams{
		Repo:  repo,
		Trash: trash,
		Profiles: &fakeProfileGetter{profile: models.SchoolProfile{
			Sessions:       []string{"2025-2026"},
			CurrentSession: "2025-2026",
		}},
		NewID: sequentialIDs("exp-"),
	})
}

func TestCreateExpenseRejectsNonPositiveAmount(t *testing.T) {
	svc := newExpenseService(&fakeExpenseRepo{expenses: map[string]models.Expense{}}, &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreateExpenseRequest{
		Category: models.ExpenseCategorySalary, Description: "March salary", Amount: -5, Date: "2025-03-01", Session: "2025-2026",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErr.Code)
}

func TestCreateExpenseRejectsUnknownCategory(t *testing.T) {
	svc := newExpenseService(&fakeExpenseRepo{expenses: map[string]models.Expense{}}, &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreateExpenseRequest{
		Category: "Lottery", Description: "tickets", Amount: 100, Date: "2025-03-01", Session: "2025-2026",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateExpenseRejectsBadDate(t *testing.T) {
	svc := newExpenseService(&fakeExpenseRepo{expenses: map[string]models.Expense{}}, &fakeTrashMover{})

	_, err := svc.Create(context.Background(), CreateExpenseRequest{
		Category: models.ExpenseCategorySalary, Description: "March salary", Amount: 100, Date: "01/03/2025", Session: "2025-2026",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateExpensePersists(t *testing.T) {
	repo := &fakeExpenseRepo{expenses: map[string]models.Expense{}}
	svc := newExpenseService(repo, &fakeTrashMover{})

	expense, err := svc.Create(context.Background(), CreateExpenseRequest{
		Category: models.ExpenseCategorySalary, Description: "March salary", Amount: 25000, Date: "2025-03-01", Session: "2025-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "exp-1", expense.ID)
	assert.Contains(t, repo.expenses, "exp-1")
}

func TestUpdateExpensePreservesIDAndSession(t *testing.T) {
	repo := &fakeExpenseRepo{expenses: map[string]models.Expense{
		"e1": {ID: "e1", Category: models.ExpenseCategorySalary, Description: "March salary", Amount: 25000, Session: "2025-2026"},
	}}
	svc := newExpenseService(repo, &fakeTrashMover{})

	expense, err := svc.Update(context.Background(), "e1", UpdateExpenseRequest{
		Category: models.ExpenseCategoryMaintenance, Description: "Roof repair", Amount: 8000, Date: "2025-03-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", expense.ID)
	assert.Equal(t, "2025-2026", expense.Session)
	assert.Equal(t, models.ExpenseCategoryMaintenance, expense.Category)
}

func TestSoftDeleteExpenseDescribesCategoryAndText(t *testing.T) {
	repo := &fakeExpenseRepo{expenses: map[string]models.Expense{
		"e1": {ID: "e1", Category: models.ExpenseCategorySalary, Description: "March salary", Amount: 25000, Session: "2025-2026"},
	}}
	trash := &fakeTrashMover{}
	svc := newExpenseService(repo, trash)

	item, err := svc.SoftDelete(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.TrashTypeExpense, item.Type)
	assert.Equal(t, models.ExpenseCategorySalary+": March salary", item.Description)
	assert.Equal(t, "e1", trash.originID)

	var snapshot models.Expense
	require.NoError(t, json.Unmarshal(item.Snapshot, &snapshot))
	assert.Equal(t, 25000.0, snapshot.Amount)
}

func TestSoftDeleteExpenseNotFound(t *testing.T) {
	svc := newExpenseService(&fakeExpenseRepo{expenses: map[string]models.Expense{}}, &fakeTrashMover{})

	_, err := svc.SoftDelete(context.Background(), "ghost")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
