package handler

import (
	"net/http"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StockHandler struct {
	stock  *service.StockService
	logger *zap.Logger
}

func NewStockHandler(stock *service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stock:  stock,
		logger: logger,
	}
}

func (h *StockHandler) AdjustStock(c *gin.Context) {
	var req domain.AdjustStockRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.stock.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		h.logger.Warn("Stock adjustment failed",
			zap.String("product_id", c.Param("id")),
			zap.Int("delta", req.Delta),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StockHandler) CreateProduct(c *gin.Context) {
	var product domain.Product

	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.stock.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}
