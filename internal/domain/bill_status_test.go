package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gridbill/internal/domain"
)

func TestBillStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to domain.BillStatus
		want     bool
	}{
		{domain.BillGenerated, domain.BillIssued, true},
		{domain.BillGenerated, domain.BillCancelled, true},
		{domain.BillGenerated, domain.BillPaid, false},
		{domain.BillGenerated, domain.BillOverdue, false},
		{domain.BillIssued, domain.BillPaid, true},
		{domain.BillIssued, domain.BillOverdue, true},
		{domain.BillIssued, domain.BillCancelled, true},
		{domain.BillIssued, domain.BillGenerated, false},
		{domain.BillOverdue, domain.BillPaid, true},
		{domain.BillOverdue, domain.BillCancelled, true},
		{domain.BillOverdue, domain.BillIssued, false},
		{domain.BillPaid, domain.BillCancelled, false},
		{domain.BillPaid, domain.BillOverdue, false},
		{domain.BillCancelled, domain.BillIssued, false},
		{domain.BillCancelled, domain.BillCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestBillStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.BillPaid.IsTerminal())
	assert.True(t, domain.BillCancelled.IsTerminal())
	assert.False(t, domain.BillGenerated.IsTerminal())
	assert.False(t, domain.BillIssued.IsTerminal())
	assert.False(t, domain.BillOverdue.IsTerminal())
}

func TestBill_EffectiveStatus(t *testing.T) {
	now := time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

	issued := &domain.Bill{Status: domain.BillIssued, DueDate: now.AddDate(0, 0, 5)}
	assert.Equal(t, domain.BillIssued, issued.EffectiveStatus(now))

	pastDue := &domain.Bill{Status: domain.BillIssued, DueDate: now.AddDate(0, 0, -1)}
	assert.Equal(t, domain.BillOverdue, pastDue.EffectiveStatus(now))

	// Only issued bills degrade; paid and cancelled stay put past due.
	paid := &domain.Bill{Status: domain.BillPaid, DueDate: now.AddDate(0, 0, -10)}
	assert.Equal(t, domain.BillPaid, paid.EffectiveStatus(now))

	generated := &domain.Bill{Status: domain.BillGenerated, DueDate: now.AddDate(0, 0, -10)}
	assert.Equal(t, domain.BillGenerated, generated.EffectiveStatus(now))
}

func TestBill_CountsTowardOutstanding(t *testing.T) {
	now := time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 5)

	assert.True(t, (&domain.Bill{Status: domain.BillIssued, DueDate: due}).CountsTowardOutstanding(now))
	assert.True(t, (&domain.Bill{Status: domain.BillOverdue, DueDate: due}).CountsTowardOutstanding(now))
	assert.False(t, (&domain.Bill{Status: domain.BillGenerated, DueDate: due}).CountsTowardOutstanding(now))
	assert.False(t, (&domain.Bill{Status: domain.BillPaid, DueDate: due}).CountsTowardOutstanding(now))
	assert.False(t, (&domain.Bill{Status: domain.BillCancelled, DueDate: due}).CountsTowardOutstanding(now))
}

func TestNormalizeBillingMonth(t *testing.T) {
	in := time.Date(2025, 7, 19, 15, 30, 45, 0, time.FixedZone("IST", 5*3600+1800))
	got := domain.NormalizeBillingMonth(in)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)
}
