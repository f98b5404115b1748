package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

type fakeStudentRepo struct {
	students map[string]models.Student
	created  []models.Student
	updated  []models.Student
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: map[string]models.Student{}}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (f *fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var result []models.Student
	for _, s := range f.students {
		if s.Session == filter.Session {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

func (f *fakeStudentRepo) ListBySession(_ context.Context, session string) ([]models.Student, error) {
	var result []models.Student
	for _, s := range f.students {
		if s.Session == session {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	f.created = append(f.created, *student)
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	if _, ok := f.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	f.students[student.ID] = *student
	f.updated = append(f.updated, *student)
	return nil
}

type fakeTrashMover struct {
	items    []models.TrashItem
	originID string
	err      error
}

func (f *fakeTrashMover) MoveToTrash(_ context.Context, item *models.TrashItem, originID string) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, *item)
	f.originID = originID
	return nil
}

type fakeProfileGetter struct {
	profile models.SchoolProfile
}

func (f *fakeProfileGetter) Get(_ context.Context) (*models.SchoolProfile, error) {
	p := f.profile
	return &p, nil
}

type fakeFeeLister struct {
	fees []models.FeeStructure
}

func (f *fakeFeeLister) ListBySession(_ context.Context, _ string) ([]models.FeeStructure, error) {
	return f.fees, nil
}

type fakeStudentPayments struct {
	payments []models.PaymentRecord
}

func (f *fakeStudentPayments) ListByStudent(_ context.Context, studentID string) ([]models.PaymentRecord, error) {
	var result []models.PaymentRecord
	for _, p := range f.payments {
		if p.StudentID == studentID {
			result = append(result, p)
		}
	}
	return result, nil
}

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func newStudentService(repo *fakeStudentRepo, trash *fakeTrashMover, profile models.SchoolProfile) *StudentService {
	return NewStudentService(StudentServiceParams{
		Repo:     repo,
		Fees:     &fakeFeeLister{},
		Payments: &fakeStudentPayments{},
		Trash:    trash,
		Profiles: &fakeProfileGetter{profile: profile},
		NewID:    sequentialIDs("stu-"),
	})
}

func TestCreateStudentRejectsUnknownSession(t *testing.T) {
	svc := newStudentService(newFakeStudentRepo(), &fakeTrashMover{}, models.SchoolProfile{
		Sessions:       pq.StringArray{"2025-2026"},
		CurrentSession: "2025-2026",
	})

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name: "Aarav Sharma", Class: "5A", Session: "2030-2031",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownSession.Code, appErrors.FromError(err).Code)
}

func TestCreateStudentAssignsIDAndPersists(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := newStudentService(repo, &fakeTrashMover{}, models.SchoolProfile{
		Sessions: pq.StringArray{"2025-2026"},
	})

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:            "Aarav Sharma",
		Class:           "5A",
		Session:         "2025-2026",
		FeeStructureIDs: []string{"f1"},
		BackFees:        500,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "2025-2026", repo.created[0].Session)
	assert.Equal(t, 500.0, repo.created[0].BackFees)
}

func TestCreateStudentIDsUniqueUnderRapidCreation(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(StudentServiceParams{
		Repo:     repo,
		Fees:     &fakeFeeLister{},
		Payments: &fakeStudentPayments{},
		Trash:    &fakeTrashMover{},
		Profiles: &fakeProfileGetter{profile: models.SchoolProfile{Sessions: pq.StringArray{"2025-2026"}}},
	})

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		student, err := svc.Create(context.Background(), CreateStudentRequest{
			Name: "Aarav Sharma", Class: "5A", Session: "2025-2026",
		})
		require.NoError(t, err)
		_, dup := seen[student.ID]
		require.False(t, dup, "duplicate id %s", student.ID)
		seen[student.ID] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestUpdateStudentNotFound(t *testing.T) {
	svc := newStudentService(newFakeStudentRepo(), &fakeTrashMover{}, models.SchoolProfile{})

	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{Name: "X", Class: "1A"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateStudentPreservesSession(t *testing.T) {
	repo := newFakeStudentRepo(models.Student{ID: "s1", Name: "Old", Class: "4B", Session: "2024-2025"})
	svc := newStudentService(repo, &fakeTrashMover{}, models.SchoolProfile{})

	updated, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{
		Name:  "New Name",
		Class: "5A",
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-2025", updated.Session)
	assert.Equal(t, "New Name", updated.Name)
}

func TestSoftDeleteStudentSnapshotsFullRecord(t *testing.T) {
	student := models.Student{
		ID:              "s1",
		Name:            "Aarav Sharma",
		Class:           "5A",
		Session:         "2025-2026",
		FeeStructureIDs: pq.StringArray{"f1", "f2"},
		TotalClassFees:  4000,
		ClassFeeID:      "f1",
		BackFees:        250,
	}
	trash := &fakeTrashMover{}
	svc := newStudentService(newFakeStudentRepo(student), trash, models.SchoolProfile{})

	item, err := svc.SoftDelete(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, models.TrashTypeStudent, item.Type)
	assert.Equal(t, "Aarav Sharma", item.Description)
	assert.Equal(t, "s1", trash.originID)
	assert.False(t, item.DeletedAt.IsZero())

	var restored models.Student
	require.NoError(t, json.Unmarshal(item.Snapshot, &restored))
	assert.Equal(t, student.ID, restored.ID)
	assert.Equal(t, student.TotalClassFees, restored.TotalClassFees)
	assert.Equal(t, student.BackFees, restored.BackFees)
}

func TestSoftDeleteStudentNotFound(t *testing.T) {
	svc := newStudentService(newFakeStudentRepo(), &fakeTrashMover{}, models.SchoolProfile{})

	_, err := svc.SoftDelete(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentBalanceComposesLedger(t *testing.T) {
	student := models.Student{ID: "s1", Session: "2025-2026", FeeStructureIDs: pq.StringArray{"f1"}, BackFees: 500}
	svc := NewStudentService(StudentServiceParams{
		Repo:     newFakeStudentRepo(student),
		Fees:     &fakeFeeLister{fees: []models.FeeStructure{{ID: "f1", Amount: 5000}}},
		Payments: &fakeStudentPayments{payments: []models.PaymentRecord{{ID: "p1", StudentID: "s1", FeeStructureID: "f1", AmountPaid: 2000}}},
		Trash:    &fakeTrashMover{},
		Profiles: &fakeProfileGetter{},
	})

	balance, err := svc.Balance(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, &models.StudentBalance{Total: 5500, Paid: 2000, Due: 3500}, balance)
}
