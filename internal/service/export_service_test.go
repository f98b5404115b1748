package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

func newExportService(payments *fakePaymentRepo, students *fakeStudentRepo, fees []models.FeeStructure) *ExportService {
	paymentSvc := NewPaymentService(PaymentServiceParams{
		Repo:     payments,
		Students: students,
		Trash:    &fakeTrashMover{},
	})
	return NewExportService(ExportServiceParams{
		Payments: paymentSvc,
		Students: students,
		Fees:     &fakeFeeLister{fees: fees},
	})
}

func TestPaymentRegisterRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(newFakePaymentRepo(), newFakeStudentRepo(), nil)

	_, err := svc.PaymentRegister(context.Background(), PaymentListRequest{Session: "2025-2026"}, "xlsx")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentRegisterCSVIncludesRowsAndTotal(t *testing.T) {
	session := "2025-2026"
	students := newFakeStudentRepo(models.Student{ID: "s1", Name: "Aarav Sharma", Class: "5A", Session: session})
	payments := newFakePaymentRepo(
		models.PaymentRecord{ID: "p1", StudentID: "s1", FeeStructureID: "f1", AmountPaid: 1500, Date: day("2025-04-10"), Method: models.PaymentMethodCash, Session: session},
		models.PaymentRecord{ID: "p2", StudentID: "s1", FeeStructureID: "f1", AmountPaid: 500, Date: day("2025-04-09"), Method: models.PaymentMethodUPI, Session: session},
	)
	svc := newExportService(payments, students, []models.FeeStructure{{ID: "f1", Name: "Tuition", Session: session}})

	file, err := svc.PaymentRegister(context.Background(), PaymentListRequest{Session: session}, ExportFormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "payment-register-2025-2026.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)

	assert.True(t, bytes.Contains(file.Content, []byte("Aarav Sharma")))
	assert.True(t, bytes.Contains(file.Content, []byte("Tuition")))
	assert.True(t, bytes.Contains(file.Content, []byte("Total")))
	assert.True(t, bytes.Contains(file.Content, []byte("2000.00")))
}

func TestPaymentRegisterPDFRenders(t *testing.T) {
	session := "2025-2026"
	students := newFakeStudentRepo(models.Student{ID: "s1", Name: "Aarav Sharma", Class: "5A", Session: session})
	payments := newFakePaymentRepo(
		models.PaymentRecord{ID: "p1", StudentID: "s1", FeeStructureID: "f1", AmountPaid: 1500, Date: day("2025-04-10"), Method: models.PaymentMethodCash, Session: session},
	)
	svc := newExportService(payments, students, nil)

	file, err := svc.PaymentRegister(context.Background(), PaymentListRequest{Session: session}, ExportFormatPDF)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}
