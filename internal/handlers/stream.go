package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Delyplott/DelyPlot-Web/internal/middleware"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const OrderEvent = "order"

// StreamOrder godoc
// @Summary     Follow an order
// @Description Server-sent events: one "order" event with the current document, then one per change, until the client disconnects
// @Tags        orders
// @Produce     text/event-stream
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/stream [get]
func (h *OrdersHandler) StreamOrder(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	ctx := c.Request.Context()
	order, sub, err := h.orders.Subscribe(ctx, uid, c.Param("order_id"))
	if err != nil {
		h.respondError(c, "failed to subscribe", err)
		return
	}
	defer sub.Unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(OrderEvent, order)
	c.Writer.Flush()

	updates := sub.Updates()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case next, ok := <-updates:
			if !ok {
				return false
			}
			if next.UID != uid {
				return true
			}
			c.SSEvent(OrderEvent, next)
			return true
		}
	})
}
