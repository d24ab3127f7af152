package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/services"
)

// CoinHandler serves the coin catalog and the dashboard market table.
type CoinHandler struct {
	coinService services.CoinServicer
}

// NewCoinHandler creates a new CoinHandler
func NewCoinHandler(coinService services.CoinServicer) *CoinHandler {
	return &CoinHandler{coinService: coinService}
}

// GetMarket returns the full coin catalog with current quotes
// @Summary     Get market table
// @Description List all tradable coins with their current quotes
// @Tags        coins
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Coins with quotes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /coins [get]
func (h *CoinHandler) GetMarket(c *gin.Context) {
	market, err := h.coinService.Market(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"coins": market})
}
