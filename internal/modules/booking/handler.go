package booking

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"detailbook/internal/domain"
	"detailbook/internal/pkg/response"
	"detailbook/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the authenticated booking endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.List)
	rg.GET("/bookings/:id", h.Get)
	rg.PUT("/bookings/:id/status", h.UpdateStatus)
	rg.POST("/bookings/:id/reschedule", h.Reschedule)
	rg.POST("/bookings/:id/cancel", h.Cancel)
}

// RegisterAdminRoutes wires endpoints that require an admin role.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/align-status", h.AlignStatuses)
}

// RegisterWebhookRoutes wires the unauthenticated payment callback.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payment", h.PaymentWebhook)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	customerID := c.GetInt64("user_id")
	if req.CustomerID != 0 && domain.Role(c.GetString("role")).IsAdmin() {
		customerID = req.CustomerID
	}

	b, err := h.service.Create(c.Request.Context(), customerID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	// Customers only ever see their own bookings; admins see everything and
	// may filter.
	if !domain.Role(c.GetString("role")).IsAdmin() {
		out, err := h.service.ListForCustomer(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"bookings": out})
		return
	}

	f := repository.BookingFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date_from")
			return
		}
		f.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date_to")
			return
		}
		f.DateTo = &t
	}

	out, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, hist, err := h.service.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !h.canAccess(c, b) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"booking": b,
		"history": hist,
	})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	if !domain.Role(c.GetString("role")).IsAdmin() {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	actorID := c.GetInt64("user_id")
	b, err := h.service.Transition(c.Request.Context(), id, domain.BookingStatus(req.Status), &actorID, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !h.canAccess(c, b) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	actorID := c.GetInt64("user_id")
	updated, err := h.service.Reschedule(c.Request.Context(), id, req.NewSlotID, &actorID, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": updated})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cancellation reason is required")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !h.canAccess(c, b) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	// Only admins may attach a refund.
	refund := req.RefundAmount
	if !domain.Role(c.GetString("role")).IsAdmin() {
		refund = 0
	}

	actorID := c.GetInt64("user_id")
	updated, err := h.service.Cancel(c.Request.Context(), id, &actorID, req.Reason, refund)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": updated})
}

func (h *Handler) AlignStatuses(c *gin.Context) {
	actorID := c.GetInt64("user_id")
	corrected, err := h.service.AlignStatuses(c.Request.Context(), &actorID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"corrected": corrected})
}

func (h *Handler) PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid webhook payload")
		return
	}

	b, err := h.service.HandlePaymentWebhook(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"booking_id": b.ID,
		"status":     b.Status,
	})
}

func (h *Handler) bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) canAccess(c *gin.Context, b *domain.Booking) bool {
	if domain.Role(c.GetString("role")).IsAdmin() {
		return true
	}
	return b.CustomerID == c.GetInt64("user_id")
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var invalid *InvalidTransitionError
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or slot not found")
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "This slot was just taken. Refresh availability and pick another")
	case errors.Is(err, ErrStaleStatus):
		response.Error(c, http.StatusConflict, "STALE_STATUS", "Booking changed concurrently. Refresh and retry")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.As(err, &invalid):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION",
			fmt.Sprintf("Transition %s -> %s is not allowed", invalid.From, invalid.To))
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
