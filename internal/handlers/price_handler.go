package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/wallet"
)

// PriceHandler exposes the resilient quote fetcher over HTTP.
type PriceHandler struct {
	fetcher wallet.PriceGetter
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(fetcher wallet.PriceGetter) *PriceHandler {
	return &PriceHandler{fetcher: fetcher}
}

// GetPrice returns the current quote for one symbol
// @Summary     Get a quote
// @Description Get the current quote for a single symbol. Never fails: the
// @Description quote's source field reports live, cached, or synthetic data.
// @Tags        prices
// @Produce     json
// @Security    BearerAuth
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} map[string]interface{} "Quote"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /prices/{symbol} [get]
func (h *PriceHandler) GetPrice(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required"))
		return
	}

	quote := h.fetcher.GetPrice(c.Request.Context(), symbol)
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// GetPrices returns current quotes for a comma-separated symbol list
// @Summary     Get quotes in batch
// @Description Get current quotes for several symbols at once
// @Tags        prices
// @Produce     json
// @Security    BearerAuth
// @Param       symbols query string true "Comma-separated ticker symbols"
// @Success     200 {object} map[string]interface{} "Quotes keyed by symbol"
// @Failure     400 {object} ErrorResponse "Missing symbols"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /prices [get]
func (h *PriceHandler) GetPrices(c *gin.Context) {
	raw := c.Query("symbols")
	if strings.TrimSpace(raw) == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbols query parameter is required"))
		return
	}

	quotes := h.fetcher.GetPrices(c.Request.Context(), strings.Split(raw, ","))
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}
