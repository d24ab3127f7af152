package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/pagination"
	"cryptofolio/internal/services"
)

// TransactionHandler serves the user's trade ledger.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService services.LedgerServicer) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// ListTransactionsQuery holds the ledger list filters.
type ListTransactionsQuery struct {
	pagination.PageRequest
	Kind string `form:"kind" binding:"omitempty,trade_kind"`
}

// List returns a page of the user's transactions, newest first
// @Summary     List transactions
// @Description Get the authenticated user's trade ledger, newest first,
// @Description optionally filtered to buys or sells
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       kind query string false "Filter to one trade kind (buy or sell)"
// @Success     200 {object} map[string]interface{} "Paginated transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.ledgerService.ListPage(userID, query.Kind, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Export downloads the user's full ledger as CSV
// @Summary     Export transactions
// @Description Download the authenticated user's full trade ledger as CSV
// @Tags        transactions
// @Produce     text/csv
// @Security    BearerAuth
// @Success     200 {string} string "CSV file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *TransactionHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out, err := h.ledgerService.ExportCSV(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", out)
}
