package events

import (
	"github.com/gin-gonic/gin"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes wires the event stream endpoint. The caller must wrap the
// group with auth + admin middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/events", h.Serve)
}

func (h *Handler) Serve(c *gin.Context) {
	// Upgrade hijacks the connection; no envelope response after this point.
	_ = h.hub.Upgrade(c.Writer, c.Request, c.GetInt64("user_id"))
}
