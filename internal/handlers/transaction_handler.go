package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/ledger"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
	"fundledger/internal/uuid"
)

// TransactionHandler handles the read-only transaction log.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerService services.LedgerServicer) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// GetTransactionLog handles listing the ledger with client names.
// @Summary     Get transaction log
// @Description Get a paginated list of all ledger rows, newest first, with the owning client
// @Tags        transactions
// @Produce     json
// @Param       type       query string false "Filter by type (DEPOSIT, WITHDRAWAL, BUY, SELL)"
// @Param       profile_id query string false "Filter by client ID"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactionLog(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.ledgerService.GetTransactionLog(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("type"); v != "" {
		kind, err := ledger.ParseKind(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be DEPOSIT, WITHDRAWAL, BUY, or SELL")
		}
		txType := models.TransactionType(kind)
		filter.Type = &txType
	}

	if v := c.Query("profile_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid profile_id")
		}
		filter.ProfileID = &id
	}

	return filter, nil
}
