package domain

import "time"

// BillStatus is the lifecycle state of a bill.
//
//	generated -> issued -> {paid, overdue} -> cancelled
//
// Cancellation is reachable from any non-paid state; paid is terminal.
type BillStatus string

const (
	BillGenerated BillStatus = "generated"
	BillIssued    BillStatus = "issued"
	BillPaid      BillStatus = "paid"
	BillOverdue   BillStatus = "overdue"
	BillCancelled BillStatus = "cancelled"
)

// IsValid reports whether the status is a known bill status.
func (s BillStatus) IsValid() bool {
	switch s {
	case BillGenerated, BillIssued, BillPaid, BillOverdue, BillCancelled:
		return true
	}
	return false
}

func (s BillStatus) String() string { return string(s) }

// IsTerminal reports whether no further transitions are possible.
func (s BillStatus) IsTerminal() bool {
	return s == BillPaid || s == BillCancelled
}

// CanAcceptPayment reports whether a payment may settle a bill in this
// status.
func (s BillStatus) CanAcceptPayment() bool {
	return s == BillIssued || s == BillOverdue
}

// CanTransitionTo reports whether the transition s -> next is allowed.
// The paid transition additionally requires a payment record created in
// the same transaction; callers enforce that, the table only encodes
// reachability.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	switch next {
	case BillIssued:
		return s == BillGenerated
	case BillOverdue:
		return s == BillIssued
	case BillPaid:
		return s.CanAcceptPayment()
	case BillCancelled:
		return s != BillPaid && s != BillCancelled
	}
	return false
}

// EffectiveStatus returns the status a reader must treat the bill as
// having at the given instant: an issued bill past its due date reads
// as overdue even when the stored column has not been updated yet.
func (b *Bill) EffectiveStatus(now time.Time) BillStatus {
	if b.Status == BillIssued && now.After(b.DueDate) {
		return BillOverdue
	}
	return b.Status
}

// CountsTowardOutstanding reports whether the bill's total belongs in
// the customer's outstanding balance at the given instant. Generated
// bills are drafts and excluded; cancelled and paid bills carry no
// balance.
func (b *Bill) CountsTowardOutstanding(now time.Time) bool {
	es := b.EffectiveStatus(now)
	return es == BillIssued || es == BillOverdue
}
