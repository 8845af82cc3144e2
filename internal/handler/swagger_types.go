package handler

import (
	"time"

	"github.com/google/uuid"

	"gridbill/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the staff login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@gridbill.example"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateStaffRequest represents the create staff request body.
type CreateStaffRequest struct {
	Email    string           `json:"email" binding:"required" example:"meera.rao@gridbill.example"`
	Password string           `json:"password" binding:"required" example:"securepassword123"`
	FullName string           `json:"full_name" binding:"required" example:"Meera Rao"`
	Role     domain.StaffRole `json:"role" binding:"required" example:"field_staff"`
}

// CreateCustomerRequest represents the create customer request body.
type CreateCustomerRequest struct {
	FullName       string                  `json:"full_name" binding:"required" example:"Ravi Kumar"`
	Email          string                  `json:"email" binding:"required" example:"ravi.kumar@example.com"`
	Phone          string                  `json:"phone" binding:"required" example:"+91-98765-43210"`
	Address        string                  `json:"address" binding:"required" example:"14 MG Road"`
	City           string                  `json:"city" binding:"required" example:"Bangalore"`
	Category       domain.CustomerCategory `json:"category" binding:"required" example:"residential"`
	ConnectionDate time.Time               `json:"connection_date" binding:"required" example:"2024-03-01T00:00:00Z"`
}

// UpdateCustomerRequest represents the update customer request body.
type UpdateCustomerRequest struct {
	FullName *string `json:"full_name" example:"Ravi K Kumar"`
	Email    *string `json:"email" example:"ravi.k@example.com"`
	Phone    *string `json:"phone" example:"+91-98765-43211"`
	Address  *string `json:"address" example:"15 MG Road"`
	City     *string `json:"city" example:"Bangalore"`
}

// SlabRequest represents one slab row of a tariff.
type SlabRequest struct {
	StartUnits  int64  `json:"start_units" example:"0"`
	EndUnits    *int64 `json:"end_units" example:"100"`
	RatePerUnit string `json:"rate_per_unit" example:"4.50"`
}

// CreateTariffRequest represents the create tariff request body.
type CreateTariffRequest struct {
	Category      domain.CustomerCategory `json:"category" binding:"required" example:"residential"`
	FixedCharge   string                  `json:"fixed_charge" binding:"required" example:"50.00"`
	DutyPercent   string                  `json:"duty_percent" example:"6"`
	GSTPercent    string                  `json:"gst_percent" example:"18"`
	EffectiveDate time.Time               `json:"effective_date" binding:"required" example:"2025-01-01T00:00:00Z"`
	ValidUntil    *time.Time              `json:"valid_until"`
	Slabs         []SlabRequest           `json:"slabs" binding:"required"`
}

// RecordReadingRequest represents the record reading request body.
type RecordReadingRequest struct {
	CustomerID     uuid.UUID `json:"customer_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	CurrentReading string    `json:"current_reading" binding:"required" example:"1250.5"`
	ReadingDate    time.Time `json:"reading_date" binding:"required" example:"2025-06-28T00:00:00Z"`
	Notes          string    `json:"notes" example:"meter box repainted"`
}

// PreviewBillRequest represents the bill preview request body.
type PreviewBillRequest struct {
	Category domain.CustomerCategory `json:"category" binding:"required" example:"residential"`
	Units    string                  `json:"units" binding:"required" example:"150"`
	AsOf     *time.Time              `json:"as_of"`
}

// TransitionRequest represents the bill transition request body.
type TransitionRequest struct {
	Status domain.BillStatus `json:"status" binding:"required" example:"issued"`
}

// RecordPaymentRequest represents the record payment request body.
type RecordPaymentRequest struct {
	BillID        uuid.UUID            `json:"bill_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	Amount        string               `json:"amount" binding:"required" example:"997.10"`
	Method        domain.PaymentMethod `json:"method" binding:"required" example:"upi"`
	TransactionID string               `json:"transaction_id" binding:"required" example:"UPI-20250715-8842613"`
	Notes         string               `json:"notes" example:"paid at counter"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-07-15T10:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
