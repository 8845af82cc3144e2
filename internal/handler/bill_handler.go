package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbill/internal/domain"
	"gridbill/internal/service"
)

// BillHandler handles bill generation and lifecycle endpoints.
type BillHandler struct {
	billingService service.BillingService
	paymentService service.PaymentService
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billingService service.BillingService, paymentService service.PaymentService) *BillHandler {
	return &BillHandler{billingService: billingService, paymentService: paymentService}
}

// GenerateBillRequest is the request body for single bill generation.
type GenerateBillRequest struct {
	CustomerID   uuid.UUID `json:"customer_id" binding:"required"`
	BillingMonth time.Time `json:"billing_month" binding:"required"`
}

// GenerateBulkRequest is the request body for bulk bill generation.
type GenerateBulkRequest struct {
	BillingMonth time.Time   `json:"billing_month" binding:"required"`
	CustomerIDs  []uuid.UUID `json:"customer_ids"`
}

// BillWithEffectiveStatus decorates a bill with its effective status:
// an issued bill past its due date reads as overdue even before the
// stored status catches up.
type BillWithEffectiveStatus struct {
	domain.Bill
	EffectiveStatus domain.BillStatus `json:"effective_status"`
}

func withEffectiveStatus(bills []domain.Bill) []BillWithEffectiveStatus {
	now := time.Now().UTC()
	out := make([]BillWithEffectiveStatus, len(bills))
	for i, b := range bills {
		out[i] = BillWithEffectiveStatus{Bill: b, EffectiveStatus: b.EffectiveStatus(now)}
	}
	return out
}

// Generate handles POST /api/v1/admin/bills/generate
// @Summary Generate a bill
// @Description Generate one customer's bill for a billing month (admin only)
// @Tags bills
// @Accept json
// @Produce json
// @Param request body GenerateBillRequest true "Customer and month"
// @Success 201 {object} Response{data=domain.Bill} "Bill generated"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 409 {object} ErrorResponseBody "Bill already exists for this month"
// @Failure 422 {object} ErrorResponseBody "No reading or no active tariff"
// @Security BearerAuth
// @Router /admin/bills/generate [post]
func (h *BillHandler) Generate(c *gin.Context) {
	var req GenerateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	bill, err := h.billingService.GenerateBill(c.Request.Context(), req.CustomerID, req.BillingMonth)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, bill)
}

// GenerateBulk handles POST /api/v1/admin/bills/generate-bulk
// @Summary Generate bills in bulk
// @Description Generate bills for many customers; each customer succeeds or fails independently (admin only)
// @Tags bills
// @Accept json
// @Produce json
// @Param request body GenerateBulkRequest true "Month and optional customer list (empty = all active)"
// @Success 200 {object} Response{data=[]service.BulkResult} "Per-customer results"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /admin/bills/generate-bulk [post]
func (h *BillHandler) GenerateBulk(c *gin.Context) {
	var req GenerateBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	results, err := h.billingService.GenerateBillsBulk(c.Request.Context(), req.BillingMonth, req.CustomerIDs)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, results)
}

// Preview handles POST /api/v1/bills/preview
// @Summary Preview a bill
// @Description Compute a bill breakdown from the active tariff without persisting anything
// @Tags bills
// @Accept json
// @Produce json
// @Param request body PreviewBillRequest true "Category and units"
// @Success 200 {object} Response{data=billing.Breakdown} "Breakdown"
// @Failure 422 {object} ErrorResponseBody "No active tariff"
// @Security BearerAuth
// @Router /bills/preview [post]
func (h *BillHandler) Preview(c *gin.Context) {
	var input service.PreviewBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	breakdown, err := h.billingService.PreviewBill(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, breakdown)
}

// GetByID handles GET /api/v1/bills/:id
// @Summary Get bill by ID
// @Tags bills
// @Produce json
// @Param id path string true "Bill ID (UUID)"
// @Success 200 {object} Response{data=BillWithEffectiveStatus} "Bill details"
// @Failure 404 {object} ErrorResponseBody "Bill not found"
// @Security BearerAuth
// @Router /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, BillWithEffectiveStatus{
		Bill:            *bill,
		EffectiveStatus: bill.EffectiveStatus(time.Now().UTC()),
	})
}

// List handles GET /api/v1/bills
// @Summary List bills
// @Tags bills
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]BillWithEffectiveStatus,meta=PagMeta} "Bills, newest first"
// @Security BearerAuth
// @Router /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	bills, total, err := h.billingService.ListBills(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, withEffectiveStatus(bills), PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Transition handles POST /api/v1/admin/bills/:id/transition
// @Summary Transition a bill
// @Description Move a bill through its lifecycle (issue, overdue, cancel). Paid requires a payment.
// @Tags bills
// @Accept json
// @Produce json
// @Param id path string true "Bill ID (UUID)"
// @Param request body TransitionRequest true "Target status"
// @Success 200 {object} Response{data=domain.Bill} "Bill updated"
// @Failure 400 {object} ErrorResponseBody "Invalid transition"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "Bill not found"
// @Security BearerAuth
// @Router /admin/bills/{id}/transition [post]
func (h *BillHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	var input service.TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	bill, err := h.paymentService.TransitionBillStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, bill)
}

// RecordPayment handles POST /api/v1/admin/payments
// @Summary Record a payment
// @Description Settle a bill in full; the paid flip and the ledger entry commit atomically (admin only)
// @Tags payments
// @Accept json
// @Produce json
// @Param request body RecordPaymentRequest true "Payment details"
// @Success 201 {object} Response{data=domain.Payment} "Payment recorded"
// @Failure 400 {object} ErrorResponseBody "Amount mismatch or invalid transition"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "Bill not found"
// @Failure 409 {object} ErrorResponseBody "Already paid or duplicate transaction"
// @Security BearerAuth
// @Router /admin/payments [post]
func (h *BillHandler) RecordPayment(c *gin.Context) {
	var input service.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, payment)
}

// GetPayment handles GET /api/v1/payments/:id
// @Summary Get payment by ID
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID (UUID)"
// @Success 200 {object} Response{data=domain.Payment} "Payment details"
// @Failure 404 {object} ErrorResponseBody "Payment not found"
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *BillHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, payment)
}
