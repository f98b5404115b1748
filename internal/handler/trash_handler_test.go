package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
)

type stubTrashRepo struct {
	items    map[string]models.TrashItem
	restored []string
}

func (s *stubTrashRepo) List(_ context.Context, typeFilter models.TrashType) ([]models.TrashItem, error) {
	var result []models.TrashItem
	for _, item := range s.items {
		if typeFilter == "" || item.Type == typeFilter {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *stubTrashRepo) FindByID(_ context.Context, id string) (*models.TrashItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *stubTrashRepo) RestoreStudent(_ context.Context, trashID string, _ *models.Student) error {
	delete(s.items, trashID)
	s.restored = append(s.restored, trashID)
	return nil
}

func (s *stubTrashRepo) RestorePayment(_ context.Context, trashID string, _ *models.PaymentRecord) error {
	delete(s.items, trashID)
	s.restored = append(s.restored, trashID)
	return nil
}

func (s *stubTrashRepo) RestoreExpense(_ context.Context, trashID string, _ *models.Expense) error {
	delete(s.items, trashID)
	s.restored = append(s.restored, trashID)
	return nil
}

func (s *stubTrashRepo) PermanentDelete(_ context.Context, trashID string) error {
	delete(s.items, trashID)
	return nil
}

func (s *stubTrashRepo) PurgeOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubStudentFinder struct{}

func (stubStudentFinder) FindByID(context.Context, string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

type stubPaymentFinder struct{}

func (stubPaymentFinder) FindByID(context.Context, string) (*models.PaymentRecord, error) {
	return nil, sql.ErrNoRows
}

type stubExpenseFinder struct{}

func (stubExpenseFinder) FindByID(context.Context, string) (*models.Expense, error) {
	return nil, sql.ErrNoRows
}

func newTrashHandler(t *testing.T, items ...models.TrashItem) (*TrashHandler, *stubTrashRepo) {
	t.Helper()
	repo := &stubTrashRepo{items: map[string]models.TrashItem{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	svc := service.NewTrashService(service.TrashServiceParams{
		Repo:     repo,
		Students: stubStudentFinder{},
		Payments: stubPaymentFinder{},
		Expenses: stubExpenseFinder{},
	})
	return NewTrashHandler(svc), repo
}

func trashedStudent(t *testing.T, id string) models.TrashItem {
	t.Helper()
	snapshot, err := json.Marshal(models.Student{ID: "s1", Name: "Aarav Sharma"})
	require.NoError(t, err)
	return models.TrashItem{ID: id, Type: models.TrashTypeStudent, Description: "Aarav Sharma", Snapshot: snapshot}
}

func TestTrashHandlerListFiltersByType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTrashHandler(t, trashedStudent(t, "t1"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/trash?type=PAYMENT", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.TrashItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}

func TestTrashHandlerListRejectsUnknownType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTrashHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/trash?type=INVOICE", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrashHandlerRestore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTrashHandler(t, trashedStudent(t, "t1"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/trash/t1/restore", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}

	handler.Restore(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"t1"}, repo.restored)
}

func TestTrashHandlerRestoreUnknownID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTrashHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/trash/missing/restore", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Restore(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrashHandlerPermanentDeleteIdempotent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTrashHandler(t, trashedStudent(t, "t1"))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodDelete, "/trash/t1", nil)
		c.Params = gin.Params{{Key: "id", Value: "t1"}}

		handler.Delete(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
