package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/export"
)

// Export output formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var registerHeaders = []string{"Date", "Receipt No", "Student", "Class", "Fee Category", "Method", "Amount"}

// ExportFile is a rendered register ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ExportService renders the filtered payment register as a downloadable
// CSV or PDF, with a totals row appended.
type ExportService struct {
	payments *PaymentService
	students paymentStudentRepository
	fees     feeStructureLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Payments *PaymentService
	Students paymentStudentRepository
	Fees     feeStructureLister
	Logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(params ExportServiceParams) *ExportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &ExportService{
		payments: params.Payments,
		students: params.Students,
		fees:     params.Fees,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   params.Logger,
	}
}

// PaymentRegister renders the filtered register in the requested format.
func (s *ExportService) PaymentRegister(ctx context.Context, req PaymentListRequest, format string) (*ExportFile, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
	}

	payments, err := s.payments.List(ctx, req)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListBySession(ctx, req.Session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	fees, err := s.fees.ListBySession(ctx, req.Session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee structures")
	}

	dataset := s.buildDataset(payments, students, fees)

	var content []byte
	contentType := "text/csv"
	switch format {
	case ExportFormatCSV:
		content, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		contentType = "application/pdf"
		title := fmt.Sprintf("Payment Register %s", req.Session)
		content, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("payment register exported",
		zap.String("session", req.Session),
		zap.String("format", format),
		zap.Int("rows", len(payments)))

	return &ExportFile{
		Name:        fmt.Sprintf("payment-register-%s.%s", req.Session, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func (s *ExportService) buildDataset(payments []models.PaymentRecord, students []models.Student, fees []models.FeeStructure) export.Dataset {
	studentsByID := make(map[string]models.Student, len(students))
	for _, student := range students {
		studentsByID[student.ID] = student
	}
	feeNames := make(map[string]string, len(fees))
	for _, fee := range fees {
		feeNames[fee.ID] = fee.Name
	}

	rows := make([]map[string]string, 0, len(payments))
	total := 0.0
	for _, p := range payments {
		student := studentsByID[p.StudentID]
		rows = append(rows, map[string]string{
			"Date":         p.Date.Format(dayLayout),
			"Receipt No":   p.ID,
			"Student":      student.Name,
			"Class":        student.Class,
			"Fee Category": feeNames[p.FeeStructureID],
			"Method":       p.Method,
			"Amount":       formatAmount(p.AmountPaid),
		})
		total += p.AmountPaid
	}

	return export.Dataset{
		Headers: registerHeaders,
		Rows:    rows,
		Summary: map[string]string{
			"Date":   "Total",
			"Amount": formatAmount(total),
		},
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
