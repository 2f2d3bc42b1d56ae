package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/middleware"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
)

type OrdersHandler struct {
	orders *services.OrderService
	logger *zap.SugaredLogger
}

func NewOrdersHandler(orders *services.OrderService, logger *zap.SugaredLogger) *OrdersHandler {
	return &OrdersHandler{orders: orders, logger: logger}
}

// CreateOrder godoc
// @Summary     Create an order
// @Description Writes the order document under a client-allocated id. Status must be uploaded (files carry driveFileId) or awaiting_upload (bridge upload follows).
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       request body models.CreateOrderRequest true "Order"
// @Success     201 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders/{order_id} [put]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), uid, c.Param("order_id"), req)
	if err != nil {
		h.respondError(c, "failed to create order", err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	order, err := h.orders.Get(c.Request.Context(), uid, c.Param("order_id"))
	if err != nil {
		h.respondError(c, "failed to get order", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// PatchFile godoc
// @Summary     Record an uploaded file
// @Description Sets driveFileId on one file of an awaiting_upload order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       index path int true "File index"
// @Param       request body models.PatchFileRequest true "Remote file id"
// @Success     200 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/files/{index} [patch]
func (h *OrdersHandler) PatchFile(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid file index"})
		return
	}

	var req models.PatchFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	order, err := h.orders.PatchFile(c.Request.Context(), uid, c.Param("order_id"), index, req.FileID)
	if err != nil {
		h.respondError(c, "failed to patch file", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// MarkUploaded godoc
// @Summary     Finish the bridge upload
// @Description Moves an awaiting_upload order whose files all have ids to uploaded
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/uploaded [post]
func (h *OrdersHandler) MarkUploaded(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	order, err := h.orders.MarkUploaded(c.Request.Context(), uid, c.Param("order_id"))
	if err != nil {
		h.respondError(c, "failed to mark order uploaded", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrdersHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
	case errors.Is(err, models.ErrOrderExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "order already exists"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: msg, Message: err.Error()})
	case errors.Is(err, services.ErrInvalidOrder), errors.Is(err, services.ErrFileIndex):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg, Message: err.Error()})
	default:
		h.logger.Errorw(msg, "order_id", c.Param("order_id"), "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msg, Message: err.Error()})
	}
}
