package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/services"
)

// WalletHandler serves the aggregated wallet view.
type WalletHandler struct {
	walletService services.WalletServicer
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService services.WalletServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetWallet returns the user's holdings and portfolio summary
// @Summary     Get wallet
// @Description Get the authenticated user's holdings with current prices and
// @Description portfolio totals. Always complete, even during price outages.
// @Tags        wallet
// @Produce     json
// @Security    BearerAuth
// @Param       sort query string false "Set to 'value' to sort holdings by market value"
// @Success     200 {object} map[string]interface{} "Holdings and summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.walletService.Snapshot(c.Request.Context(), userID, c.Query("sort") == "value")
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
