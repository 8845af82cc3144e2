package noop

import (
	"context"

	"go.uber.org/zap"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

type noopNotifier struct {
	logger *zap.Logger
}

// NewNotifier creates a no-op Notifier that logs what would have been
// sent. The default provider for development and tests.
func NewNotifier(logger *zap.Logger) port.Notifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) BillGenerated(_ context.Context, customer *domain.Customer, bill *domain.Bill) error {
	n.logger.Info("noop notify: bill generated",
		zap.String("to", customer.Email),
		zap.String("bill_number", bill.BillNumber),
		zap.String("total", bill.TotalAmount.String()))
	return nil
}

func (n *noopNotifier) PaymentReceived(_ context.Context, customer *domain.Customer, _ *domain.Bill, payment *domain.Payment) error {
	n.logger.Info("noop notify: payment received",
		zap.String("to", customer.Email),
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("amount", payment.Amount.String()))
	return nil
}
