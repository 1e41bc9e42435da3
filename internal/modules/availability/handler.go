package availability

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"detailbook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", h.GetAvailability)
}

// GetAvailability serves both shapes of the availability query:
// ?date= returns the free slots of one day, ?date_from=&date_to= (both
// optional) returns per-day counts over a range.
func (h *Handler) GetAvailability(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		buffer := -1
		if raw := c.Query("buffer_minutes"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "buffer_minutes must be a non-negative integer")
				return
			}
			buffer = n
		}

		slots, err := h.service.ForDate(c.Request.Context(), date, buffer)
		if err != nil {
			if err == ErrValidation {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid or past date")
				return
			}
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query availability")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"date": date, "slots": slots})
		return
	}

	days, err := h.service.ForRange(c.Request.Context(), c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		if err == ErrValidation {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query availability")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"days": days})
}
