package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbill/internal/middleware"
	"gridbill/internal/service"
)

// ReadingHandler handles meter reading endpoints.
type ReadingHandler struct {
	readingService service.ReadingService
}

// NewReadingHandler creates a new ReadingHandler.
func NewReadingHandler(readingService service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

// Record handles POST /api/v1/readings
// @Summary Record a meter reading
// @Description Store a field-entered reading; previous reading and units are derived from history
// @Tags readings
// @Accept json
// @Produce json
// @Param request body RecordReadingRequest true "Reading details"
// @Success 201 {object} Response{data=domain.MeterReading} "Reading recorded"
// @Failure 400 {object} ErrorResponseBody "Reading below previous"
// @Failure 404 {object} ErrorResponseBody "Customer not found"
// @Failure 409 {object} ErrorResponseBody "Customer inactive"
// @Security BearerAuth
// @Router /readings [post]
func (h *ReadingHandler) Record(c *gin.Context) {
	var input service.RecordReadingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	var recordedBy *uuid.UUID
	if userID, err := middleware.GetUserID(c); err == nil {
		recordedBy = &userID
	}

	reading, err := h.readingService.Record(c.Request.Context(), input, recordedBy)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, reading)
}

// GetByID handles GET /api/v1/readings/:id
// @Summary Get meter reading by ID
// @Tags readings
// @Produce json
// @Param id path string true "Reading ID (UUID)"
// @Success 200 {object} Response{data=domain.MeterReading} "Reading details"
// @Failure 404 {object} ErrorResponseBody "Reading not found"
// @Security BearerAuth
// @Router /readings/{id} [get]
func (h *ReadingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid reading ID")
		return
	}

	reading, err := h.readingService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, reading)
}
