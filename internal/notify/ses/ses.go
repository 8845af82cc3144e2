package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"gridbill/internal/config"
	"gridbill/internal/domain"
	"gridbill/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	portalURL   string
}

// NewNotifier creates an SES-backed Notifier. Static credentials from
// the config take precedence; otherwise the default AWS credential
// chain applies.
func NewNotifier(cfg config.NotifyConfig) (port.Notifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		portalURL:   cfg.PortalURL,
	}, nil
}

func (s *sesNotifier) BillGenerated(ctx context.Context, customer *domain.Customer, bill *domain.Bill) error {
	subject := fmt.Sprintf("Your electricity bill %s for %s", bill.BillNumber, bill.BillingMonth.Format("January 2006"))
	htmlBody := buildBillHTML(customer, bill, s.portalURL)
	textBody := fmt.Sprintf(
		"Dear %s,\n\nYour electricity bill for %s is ready.\n\nBill number: %s\nUnits consumed: %s\nTotal amount: %s\nDue date: %s\n\nView your bill at %s\n\nGridBill",
		customer.FullName, bill.BillingMonth.Format("January 2006"),
		bill.BillNumber, bill.UnitsConsumed, bill.TotalAmount,
		bill.DueDate.Format("02 Jan 2006"), s.portalURL)

	return s.send(ctx, customer.Email, subject, htmlBody, textBody)
}

func (s *sesNotifier) PaymentReceived(ctx context.Context, customer *domain.Customer, bill *domain.Bill, payment *domain.Payment) error {
	subject := fmt.Sprintf("Payment received - receipt %s", payment.ReceiptNumber)
	htmlBody := buildReceiptHTML(customer, bill, payment, s.portalURL)
	textBody := fmt.Sprintf(
		"Dear %s,\n\nWe received your payment of %s against bill %s.\n\nReceipt number: %s\nPayment method: %s\nTransaction reference: %s\n\nGridBill",
		customer.FullName, payment.Amount, bill.BillNumber,
		payment.ReceiptNumber, payment.Method, payment.TransactionID)

	return s.send(ctx, customer.Email, subject, htmlBody, textBody)
}

func (s *sesNotifier) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildBillHTML(customer *domain.Customer, bill *domain.Bill, portalURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your electricity bill is ready</h2>
  <p>Dear %s,</p>
  <p>Your bill for <strong>%s</strong> has been generated.</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 6px 0; color: #666;">Bill number</td><td style="text-align: right;">%s</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Account</td><td style="text-align: right;">%s</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Units consumed</td><td style="text-align: right;">%s</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Due date</td><td style="text-align: right;">%s</td></tr>
    <tr><td style="padding: 6px 0; font-weight: bold;">Total amount</td><td style="text-align: right; font-weight: bold;">%s</td></tr>
  </table>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Bill</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">GridBill - Electricity Billing</p>
</body>
</html>`, customer.FullName, bill.BillingMonth.Format("January 2006"),
		bill.BillNumber, customer.AccountNumber, bill.UnitsConsumed,
		bill.DueDate.Format("02 Jan 2006"), bill.TotalAmount, portalURL)
}

func buildReceiptHTML(customer *domain.Customer, bill *domain.Bill, payment *domain.Payment, portalURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Payment received</h2>
  <p>Dear %s,</p>
  <p>We received your payment of <strong>%s</strong> against bill <strong>%s</strong>.</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 6px 0; color: #666;">Receipt number</td><td style="text-align: right;">%s</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Payment method</td><td style="text-align: right;">%s</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Transaction reference</td><td style="text-align: right;">%s</td></tr>
  </table>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Account</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">GridBill - Electricity Billing</p>
</body>
</html>`, customer.FullName, payment.Amount, bill.BillNumber,
		payment.ReceiptNumber, payment.Method, payment.TransactionID, portalURL)
}
