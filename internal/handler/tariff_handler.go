package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbill/internal/domain"
	"gridbill/internal/service"
)

// TariffHandler handles rate card endpoints.
type TariffHandler struct {
	tariffService service.TariffService
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(tariffService service.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// Create handles POST /api/v1/admin/tariffs
// @Summary Publish a tariff
// @Description Create a rate card with slabs (admin only). Rate changes are new tariffs, never edits.
// @Tags tariffs
// @Accept json
// @Produce json
// @Param request body CreateTariffRequest true "Tariff details"
// @Success 201 {object} Response{data=domain.Tariff} "Tariff created"
// @Failure 400 {object} ErrorResponseBody "Malformed slab list"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /admin/tariffs [post]
func (h *TariffHandler) Create(c *gin.Context) {
	var input service.CreateTariffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tariff, err := h.tariffService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, tariff)
}

// List handles GET /api/v1/tariffs
// @Summary List tariffs
// @Tags tariffs
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Tariff,meta=PagMeta} "List of tariffs"
// @Security BearerAuth
// @Router /tariffs [get]
func (h *TariffHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	tariffs, total, err := h.tariffService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, tariffs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/tariffs/:id
// @Summary Get tariff by ID
// @Tags tariffs
// @Produce json
// @Param id path string true "Tariff ID (UUID)"
// @Success 200 {object} Response{data=domain.Tariff} "Tariff with slabs"
// @Failure 404 {object} ErrorResponseBody "Tariff not found"
// @Security BearerAuth
// @Router /tariffs/{id} [get]
func (h *TariffHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid tariff ID")
		return
	}

	tariff, err := h.tariffService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tariff)
}

// GetActive handles GET /api/v1/tariffs/active
// @Summary Get the tariff in force
// @Description Resolve the single active tariff for a category on a date
// @Tags tariffs
// @Produce json
// @Param category query string true "Customer category"
// @Param as_of query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} Response{data=domain.Tariff} "Active tariff"
// @Failure 409 {object} ErrorResponseBody "Overlapping tariffs"
// @Failure 422 {object} ErrorResponseBody "No active tariff"
// @Security BearerAuth
// @Router /tariffs/active [get]
func (h *TariffHandler) GetActive(c *gin.Context) {
	category := domain.CustomerCategory(c.Query("category"))
	if !category.IsValid() {
		RespondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "unknown customer category")
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DATE", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	tariff, err := h.tariffService.GetActiveTariff(c.Request.Context(), category, asOf)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tariff)
}
