package port

import (
	"context"

	"gridbill/internal/domain"
)

// Notifier delivers customer-facing notices. Calls are fire-and-forget
// from the billing core's perspective: failures are logged, never
// propagated into the transactional path.
type Notifier interface {
	BillGenerated(ctx context.Context, customer *domain.Customer, bill *domain.Bill) error
	PaymentReceived(ctx context.Context, customer *domain.Customer, bill *domain.Bill, payment *domain.Payment) error
}
