package timeslot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"detailbook/internal/pkg/response"
	"detailbook/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers admin slot management endpoints. The caller is
// expected to wrap the group with auth + admin middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/time-slots", h.CreateSlot)
	rg.POST("/time-slots/bulk", h.CreateSlots)
	rg.GET("/time-slots", h.QuerySlots)
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid slot fields", errs)
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Date must not be in the past and duration must be positive")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create time slot")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) CreateSlots(c *gin.Context) {
	var req BulkCreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid slot fields", errs)
		return
	}

	slots, err := h.service.CreateSlots(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range or duration")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create time slots")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"created": len(slots),
		"slots":   slots,
	})
}

func (h *Handler) QuerySlots(c *gin.Context) {
	date := c.Query("date")
	from := c.Query("date_from")
	to := c.Query("date_to")

	switch {
	case date != "":
		slots, err := h.service.Query(c.Request.Context(), date)
		if err != nil {
			h.queryError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"date": date, "slots": slots})

	case from != "" && to != "":
		byDay, err := h.service.QueryRange(c.Request.Context(), from, to)
		if err != nil {
			h.queryError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"days": byDay})

	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Provide either date= or date_from=&date_to=")
	}
}

func (h *Handler) queryError(c *gin.Context, err error) {
	if err == ErrValidation {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date format, expected YYYY-MM-DD")
		return
	}
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query time slots")
}
