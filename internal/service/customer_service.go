package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

// CreateCustomerInput is the DTO for registering a new connection.
type CreateCustomerInput struct {
	FullName       string                  `json:"full_name" binding:"required"`
	Email          string                  `json:"email" binding:"required,email"`
	Phone          string                  `json:"phone" binding:"required"`
	Address        string                  `json:"address" binding:"required"`
	City           string                  `json:"city" binding:"required"`
	Category       domain.CustomerCategory `json:"category" binding:"required"`
	ConnectionDate time.Time               `json:"connection_date" binding:"required"`
}

// UpdateCustomerInput is the DTO for updating contact details. Category
// and connection date are fixed at registration.
type UpdateCustomerInput struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
}

// CustomerService defines the customer directory contract.
type CustomerService interface {
	Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo port.CustomerRepository
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(repo port.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	if !input.Category.IsValid() {
		return nil, fmt.Errorf("customer.Create: invalid category %q", input.Category)
	}

	id := uuid.New()
	customer := &domain.Customer{
		ID:             id,
		AccountNumber:  accountNumber(id),
		MeterNumber:    meterNumber(id),
		FullName:       input.FullName,
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:          input.Phone,
		Address:        input.Address,
		City:           input.City,
		Category:       input.Category,
		Status:         domain.CustomerActive,
		ConnectionDate: input.ConnectionDate.UTC(),
		PaymentStatus:  domain.PaymentStatusPaid,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *customerService) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error) {
	return s.repo.GetByAccountNumber(ctx, accountNumber)
}

func (s *customerService) List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		customer.FullName = *input.FullName
	}
	if input.Email != nil {
		customer.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.City != nil {
		customer.City = *input.City
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Deactivate suspends billing for a connection. Customers are never
// hard-deleted; their bill and payment history stays queryable.
func (s *customerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetStatus(ctx, id, domain.CustomerInactive)
}

func accountNumber(id uuid.UUID) string {
	return fmt.Sprintf("ELX-%d-%s", time.Now().UTC().Year(), strings.ToUpper(id.String()[:6]))
}

func meterNumber(id uuid.UUID) string {
	return "MTR-" + strings.ToUpper(id.String()[24:30])
}
