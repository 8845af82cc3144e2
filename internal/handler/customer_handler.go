package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbill/internal/service"
)

// CustomerHandler handles customer directory endpoints.
type CustomerHandler struct {
	customerService service.CustomerService
	billingService  service.BillingService
	paymentService  service.PaymentService
	readingService  service.ReadingService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(
	customerService service.CustomerService,
	billingService service.BillingService,
	paymentService service.PaymentService,
	readingService service.ReadingService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		billingService:  billingService,
		paymentService:  paymentService,
		readingService:  readingService,
	}
}

// Create handles POST /api/v1/customers
// @Summary Register a customer connection
// @Description Create a customer with generated account and meter numbers
// @Tags customers
// @Accept json
// @Produce json
// @Param request body CreateCustomerRequest true "Customer details"
// @Success 201 {object} Response{data=domain.Customer} "Customer created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var input service.CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, customer)
}

// GetByID handles GET /api/v1/customers/:id
// @Summary Get customer by ID
// @Description Get customer details including the derived balance fields
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID (UUID)"
// @Success 200 {object} Response{data=domain.Customer} "Customer details"
// @Failure 404 {object} ErrorResponseBody "Customer not found"
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, customer)
}

// List handles GET /api/v1/customers
// @Summary List customers
// @Tags customers
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Customer,meta=PagMeta} "List of customers"
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	customers, total, err := h.customerService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, customers, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Update handles PUT /api/v1/customers/:id
// @Summary Update customer contact details
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID (UUID)"
// @Param request body UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.Customer} "Customer updated"
// @Failure 404 {object} ErrorResponseBody "Customer not found"
// @Security BearerAuth
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	var input service.UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, customer)
}

// Deactivate handles DELETE /api/v1/customers/:id
// @Summary Deactivate a customer connection
// @Description Suspend billing for a connection; history is kept
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Customer deactivated"
// @Failure 404 {object} ErrorResponseBody "Customer not found"
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	if err := h.customerService.Deactivate(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "customer deactivated"})
}

// ListBills handles GET /api/v1/customers/:id/bills
// @Summary List a customer's bills
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID (UUID)"
// @Success 200 {object} Response{data=[]BillWithEffectiveStatus} "Bills, newest first"
// @Security BearerAuth
// @Router /customers/{id}/bills [get]
func (h *CustomerHandler) ListBills(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	bills, err := h.billingService.ListCustomerBills(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, withEffectiveStatus(bills))
}

// ListPayments handles GET /api/v1/customers/:id/payments
// @Summary List a customer's payments
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID (UUID)"
// @Success 200 {object} Response{data=[]domain.Payment} "Payments, newest first"
// @Security BearerAuth
// @Router /customers/{id}/payments [get]
func (h *CustomerHandler) ListPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	payments, err := h.paymentService.ListCustomerPayments(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, payments)
}

// ListReadings handles GET /api/v1/customers/:id/readings
// @Summary List a customer's meter readings
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.MeterReading,meta=PagMeta} "Readings, newest first"
// @Security BearerAuth
// @Router /customers/{id}/readings [get]
func (h *CustomerHandler) ListReadings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}
	offset, limit := pagination(c)

	readings, total, err := h.readingService.ListByCustomer(c.Request.Context(), id, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, readings, PagMeta{Total: total, Offset: offset, Limit: limit})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
