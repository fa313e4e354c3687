package handler

import (
	"net/http"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	logger   *zap.Logger
}

func NewOrderHandler(checkout *service.CheckoutService, orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		logger:   logger,
	}
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientStock, domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		// Internal detail stays in the logs.
		msg = "internal error"
	}
	c.JSON(statusForKind(kind), gin.H{
		"error":      msg,
		"kind":       string(kind),
		"request_id": c.GetString("request_id"),
	})
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req domain.CheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid checkout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), service.CheckoutInput{
		CustomerID:     req.CustomerID,
		Items:          req.Items,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.logger.Warn("Checkout failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, domain.CheckoutResponse{
		OrderID: order.OrderID,
		Status:  order.Status,
		Total:   order.TotalAmount,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Query("customer_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req domain.UpdateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), c.Param("id"), service.UpdateOrderInput{
		CustomerID: req.CustomerID,
		Items:      req.Items,
		NewStatus:  req.Status,
	})
	if err != nil {
		h.logger.Warn("Order update failed",
			zap.String("order_id", c.Param("id")),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
