package service

import (
	"sort"
	"strings"
	"time"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
)

const dayLayout = "2006-01-02"

// LedgerService derives financial facts from the current store contents.
// Nothing here is cached or persisted; every balance is recomputed on read,
// so no mutation ever needs an invalidation step. All lookups are
// permissive: a missing fee-structure reference contributes zero instead of
// failing, which matches how the dashboard treats stale references.
type LedgerService struct {
	now func() time.Time
}

// NewLedgerService constructs the ledger engine.
func NewLedgerService() *LedgerService {
	return &LedgerService{now: time.Now}
}

func overrideApplies(student models.Student) bool {
	return student.TotalClassFees > 0 &&
		len(student.FeeStructureIDs) > 0 &&
		student.FeeStructureIDs[0] == student.ClassFeeID
}

func feeAmounts(fees []models.FeeStructure) map[string]float64 {
	amounts := make(map[string]float64, len(fees))
	for _, fee := range fees {
		amounts[fee.ID] = fee.Amount
	}
	return amounts
}

// StudentTotal computes the student's total fee liability. When the class
// override is configured and targets the first fee-structure reference, it
// replaces the structure sum entirely; back fees are added in both modes.
// A student with no references and no override owes zero.
func (s *LedgerService) StudentTotal(student models.Student, fees []models.FeeStructure) float64 {
	if overrideApplies(student) {
		return student.TotalClassFees + student.BackFees
	}

	amounts := feeAmounts(fees)
	total := 0.0
	for _, id := range student.FeeStructureIDs {
		total += amounts[id]
	}
	return total + student.BackFees
}

// StudentPaid sums payments for the student across every fee line.
func (s *LedgerService) StudentPaid(studentID string, payments []models.PaymentRecord) float64 {
	paid := 0.0
	for _, p := range payments {
		if p.StudentID == studentID {
			paid += p.AmountPaid
		}
	}
	return paid
}

// Due is the outstanding balance, floored at zero. Overpayment is silently
// absorbed rather than reported as credit.
func (s *LedgerService) Due(total, paid float64) float64 {
	if due := total - paid; due > 0 {
		return due
	}
	return 0
}

// StudentBalance computes the full derived view for one student.
func (s *LedgerService) StudentBalance(student models.Student, fees []models.FeeStructure, payments []models.PaymentRecord) models.StudentBalance {
	total := s.StudentTotal(student, fees)
	paid := s.StudentPaid(student.ID, payments)
	return models.StudentBalance{Total: total, Paid: paid, Due: s.Due(total, paid)}
}

// FeeLineBalance scopes the balance to a single fee line. The override
// substitution applies only when the line is the student's first reference.
func (s *LedgerService) FeeLineBalance(student models.Student, feeStructureID string, fees []models.FeeStructure, payments []models.PaymentRecord) models.StudentBalance {
	var total float64
	if overrideApplies(student) && feeStructureID == student.FeeStructureIDs[0] {
		total = student.TotalClassFees
	} else {
		total = feeAmounts(fees)[feeStructureID]
	}

	paid := 0.0
	for _, p := range payments {
		if p.StudentID == student.ID && p.FeeStructureID == feeStructureID {
			paid += p.AmountPaid
		}
	}

	return models.StudentBalance{Total: total, Paid: paid, Due: s.Due(total, paid)}
}

// PaidPercentage returns paid/total as a percentage, zero when total is zero.
func (s *LedgerService) PaidPercentage(paid, total float64) float64 {
	if total == 0 {
		return 0
	}
	return paid / total * 100
}

// CollectionStats aggregates a payment set. "Today" is evaluated at call
// time by calendar-date equality, matching the day normalisation used for
// stored records.
func (s *LedgerService) CollectionStats(payments []models.PaymentRecord) models.CollectionStats {
	today := s.now().Format(dayLayout)
	stats := models.CollectionStats{Count: len(payments)}
	for _, p := range payments {
		stats.Total += p.AmountPaid
		if p.Date.Format(dayLayout) == today {
			stats.TodayAmount += p.AmountPaid
		}
	}
	return stats
}

// FilterPayments narrows and orders a payment listing. The date range is
// inclusive on both ends; the end date covers its whole calendar day. The
// search term matches student name, student id, or payment id
// case-insensitively. Results are ordered by date descending with ties
// broken by payment id descending, giving a total order for stable paging.
func (s *LedgerService) FilterPayments(payments []models.PaymentRecord, students []models.Student, filter models.PaymentFilter) []models.PaymentRecord {
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.ID] = strings.ToLower(st.Name)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var from, to time.Time
	if filter.From != nil {
		f := *filter.From
		from = time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, f.Location())
	}
	if filter.To != nil {
		t := *filter.To
		to = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
	}

	result := make([]models.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.From != nil && p.Date.Before(from) {
			continue
		}
		if filter.To != nil && p.Date.After(to) {
			continue
		}
		if search != "" {
			if !strings.Contains(names[p.StudentID], search) &&
				!strings.Contains(strings.ToLower(p.StudentID), search) &&
				!strings.Contains(strings.ToLower(p.ID), search) {
				continue
			}
		}
		result = append(result, p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		di := result[i].Date.Format(dayLayout)
		dj := result[j].Date.Format(dayLayout)
		if di != dj {
			return di > dj
		}
		return result[i].ID > result[j].ID
	})

	return result
}
