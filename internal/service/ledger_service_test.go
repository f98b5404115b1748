package service

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
)

func day(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

func fixedLedger(now time.Time) *LedgerService {
	ledger := NewLedgerService()
	ledger.now = func() time.Time { return now }
	return ledger
}

func TestStudentTotalSumsReferencedStructures(t *testing.T) {
	ledger := NewLedgerService()
	fees := []models.FeeStructure{
		{ID: "f1", Amount: 5000},
		{ID: "f2", Amount: 1200},
		{ID: "f3", Amount: 300},
	}
	student := models.Student{ID: "s1", FeeStructureIDs: pq.StringArray{"f1", "f3"}, BackFees: 500}

	assert.Equal(t, 5800.0, ledger.StudentTotal(student, fees))
}

func TestStudentTotalMissingReferencesContributeZero(t *testing.T) {
	ledger := NewLedgerService()
	student := models.Student{ID: "s1", FeeStructureIDs: pq.StringArray{"gone"}}

	assert.Equal(t, 0.0, ledger.StudentTotal(student, nil))
}

func TestStudentTotalNoReferencesNoOverride(t *testing.T) {
	ledger := NewLedgerService()

	assert.Equal(t, 0.0, ledger.StudentTotal(models.Student{ID: "s1"}, nil))
}

func TestStudentTotalOverrideAppliesOnlyToFirstReference(t *testing.T) {
	ledger := NewLedgerService()
	fees := []models.FeeStructure{{ID: "f1", Amount: 5000}, {ID: "f2", Amount: 1200}}

	// Override targets the first reference: replaces the structure sum.
	overridden := models.Student{
		ID:              "s1",
		FeeStructureIDs: pq.StringArray{"f1", "f2"},
		TotalClassFees:  4000,
		ClassFeeID:      "f1",
		BackFees:        100,
	}
	assert.Equal(t, 4100.0, ledger.StudentTotal(overridden, fees))

	// Override targets a later reference: ignored, sum applies.
	ignored := overridden
	ignored.ClassFeeID = "f2"
	assert.Equal(t, 6300.0, ledger.StudentTotal(ignored, fees))
}

func TestStudentTotalBackFeesAddedInOverrideMode(t *testing.T) {
	ledger := NewLedgerService()
	student := models.Student{
		ID:              "s1",
		FeeStructureIDs: pq.StringArray{"f1"},
		TotalClassFees:  2500,
		ClassFeeID:      "f1",
		BackFees:        750,
	}

	assert.Equal(t, 3250.0, ledger.StudentTotal(student, []models.FeeStructure{{ID: "f1", Amount: 9999}}))
}

func TestStudentPaidIsPerStudentAcrossFeeLines(t *testing.T) {
	ledger := NewLedgerService()
	payments := []models.PaymentRecord{
		{ID: "p1", StudentID: "s1", FeeStructureID: "f1", AmountPaid: 2000},
		{ID: "p2", StudentID: "s1", FeeStructureID: "f2", AmountPaid: 300},
		{ID: "p3", StudentID: "s2", FeeStructureID: "f1", AmountPaid: 999},
	}

	assert.Equal(t, 2300.0, ledger.StudentPaid("s1", payments))
	assert.Equal(t, 0.0, ledger.StudentPaid("unknown", payments))
}

func TestDueNeverNegative(t *testing.T) {
	ledger := NewLedgerService()

	assert.Equal(t, 1500.0, ledger.Due(2000, 500))
	assert.Equal(t, 0.0, ledger.Due(2000, 2000))
	assert.Equal(t, 0.0, ledger.Due(2000, 5000))
}

func TestFeeLineBalanceScopesPaymentsToLine(t *testing.T) {
	ledger := NewLedgerService()
	fees := []models.FeeStructure{{ID: "f1", Amount: 5000}, {ID: "f2", Amount: 1200}}
	student := models.Student{ID: "s1", FeeStructureIDs: pq.StringArray{"f1", "f2"}}
	payments := []models.PaymentRecord{
		{ID: "p1", StudentID: "s1", FeeStructureID: "f1", AmountPaid: 2000},
		{ID: "p2", StudentID: "s1", FeeStructureID: "f2", AmountPaid: 700},
		{ID: "p3", StudentID: "s2", FeeStructureID: "f1", AmountPaid: 400},
	}

	balance := ledger.FeeLineBalance(student, "f1", fees, payments)
	assert.Equal(t, models.StudentBalance{Total: 5000, Paid: 2000, Due: 3000}, balance)
}

func TestFeeLineBalanceOverrideSubstitution(t *testing.T) {
	ledger := NewLedgerService()
	fees := []models.FeeStructure{{ID: "f1", Amount: 5000}, {ID: "f2", Amount: 1200}}
	student := models.Student{
		ID:              "s1",
		FeeStructureIDs: pq.StringArray{"f1", "f2"},
		TotalClassFees:  4000,
		ClassFeeID:      "f1",
	}

	assert.Equal(t, 4000.0, ledger.FeeLineBalance(student, "f1", fees, nil).Total)
	assert.Equal(t, 1200.0, ledger.FeeLineBalance(student, "f2", fees, nil).Total)
}

func TestPaidPercentageZeroTotal(t *testing.T) {
	ledger := NewLedgerService()

	assert.Equal(t, 0.0, ledger.PaidPercentage(500, 0))
	assert.Equal(t, 40.0, ledger.PaidPercentage(2000, 5000))
}

func TestCollectionStats(t *testing.T) {
	today := day("2025-04-10")
	ledger := fixedLedger(today)

	payments := []models.PaymentRecord{
		{ID: "p1", AmountPaid: 100, Date: today},
		{ID: "p2", AmountPaid: 50, Date: today},
		{ID: "p3", AmountPaid: 20, Date: day("2025-04-09")},
	}

	stats := ledger.CollectionStats(payments)
	assert.Equal(t, models.CollectionStats{Total: 170, TodayAmount: 150, Count: 3}, stats)
}

func TestFilterPaymentsInclusiveDateRangeAndTiebreak(t *testing.T) {
	ledger := NewLedgerService()
	t0 := day("2025-04-10")
	t1 := day("2025-04-09")
	payments := []models.PaymentRecord{
		{ID: "a", StudentID: "s1", Date: t0, AmountPaid: 100},
		{ID: "b", StudentID: "s1", Date: t0, AmountPaid: 50},
		{ID: "c", StudentID: "s1", Date: t1, AmountPaid: 20},
	}

	filtered := ledger.FilterPayments(payments, nil, models.PaymentFilter{From: &t0, To: &t0})
	assert.Len(t, filtered, 2)
	assert.Equal(t, "b", filtered[0].ID)
	assert.Equal(t, "a", filtered[1].ID)
}

func TestFilterPaymentsSearchMatchesNameStudentAndPaymentID(t *testing.T) {
	ledger := NewLedgerService()
	students := []models.Student{{ID: "s1", Name: "Aarav Sharma"}, {ID: "s2", Name: "Isha Verma"}}
	payments := []models.PaymentRecord{
		{ID: "pay-100", StudentID: "s1", Date: day("2025-04-10")},
		{ID: "pay-200", StudentID: "s2", Date: day("2025-04-10")},
	}

	byName := ledger.FilterPayments(payments, students, models.PaymentFilter{Search: "sharma"})
	assert.Len(t, byName, 1)
	assert.Equal(t, "pay-100", byName[0].ID)

	byStudentID := ledger.FilterPayments(payments, students, models.PaymentFilter{Search: "S2"})
	assert.Len(t, byStudentID, 1)
	assert.Equal(t, "pay-200", byStudentID[0].ID)

	byPaymentID := ledger.FilterPayments(payments, students, models.PaymentFilter{Search: "pay-2"})
	assert.Len(t, byPaymentID, 1)
}

func TestFilterPaymentsSortsDateDescending(t *testing.T) {
	ledger := NewLedgerService()
	payments := []models.PaymentRecord{
		{ID: "old", Date: day("2025-01-01")},
		{ID: "new", Date: day("2025-03-01")},
		{ID: "mid", Date: day("2025-02-01")},
	}

	sorted := ledger.FilterPayments(payments, nil, models.PaymentFilter{})
	assert.Equal(t, []string{"new", "mid", "old"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestBalanceLifecycleEndToEnd(t *testing.T) {
	ledger := NewLedgerService()
	fees := []models.FeeStructure{{ID: "F1", Amount: 5000}}
	student := models.Student{ID: "s1", FeeStructureIDs: pq.StringArray{"F1"}, BackFees: 500}

	payments := []models.PaymentRecord{}
	balance := ledger.StudentBalance(student, fees, payments)
	assert.Equal(t, models.StudentBalance{Total: 5500, Paid: 0, Due: 5500}, balance)

	payments = append(payments, models.PaymentRecord{ID: "p1", StudentID: "s1", FeeStructureID: "F1", AmountPaid: 2000})
	balance = ledger.StudentBalance(student, fees, payments)
	assert.Equal(t, models.StudentBalance{Total: 5500, Paid: 2000, Due: 3500}, balance)

	payments = append(payments, models.PaymentRecord{ID: "p2", StudentID: "s1", FeeStructureID: "F1", AmountPaid: 3500})
	balance = ledger.StudentBalance(student, fees, payments)
	assert.Equal(t, 0.0, balance.Due)

	// Soft-deleting the second payment removes it from the active set.
	balance = ledger.StudentBalance(student, fees, payments[:1])
	assert.Equal(t, 3500.0, balance.Due)

	// Restoring it brings the due back to zero.
	balance = ledger.StudentBalance(student, fees, payments)
	assert.Equal(t, 0.0, balance.Due)
}
