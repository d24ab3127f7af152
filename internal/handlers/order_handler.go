package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/services"
)

// OrderHandler records market buy and sell orders.
type OrderHandler struct {
	ledgerService services.LedgerServicer
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(ledgerService services.LedgerServicer) *OrderHandler {
	return &OrderHandler{ledgerService: ledgerService}
}

// OrderRequest represents a market order payload. The order is priced at
// the current quote; clients send only symbol and quantity.
type OrderRequest struct {
	Symbol   string  `json:"symbol" binding:"required,coin_symbol"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// Buy records a market buy order
// @Summary     Buy a coin
// @Description Record a market buy priced at the current quote
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OrderRequest true "Order"
// @Success     201 {object} map[string]interface{} "Recorded transaction"
// @Failure     400 {object} ErrorResponse "Invalid order"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown coin"
// @Router      /orders/buy [post]
func (h *OrderHandler) Buy(c *gin.Context) {
	h.record(c, h.ledgerService.RecordBuy)
}

// Sell records a market sell order
// @Summary     Sell a coin
// @Description Record a market sell priced at the current quote. Selling
// @Description more than currently held is rejected.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OrderRequest true "Order"
// @Success     201 {object} map[string]interface{} "Recorded transaction"
// @Failure     400 {object} ErrorResponse "Invalid order or insufficient holdings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown coin"
// @Router      /orders/sell [post]
func (h *OrderHandler) Sell(c *gin.Context) {
	h.record(c, h.ledgerService.RecordSell)
}

func (h *OrderHandler) record(c *gin.Context, record func(ctx context.Context, userID, symbol string, quantity float64) (*models.Transaction, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := record(c.Request.Context(), userID, req.Symbol, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}
