package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// TradeHandler handles BUY and SELL entries.
type TradeHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *TradeHandler {
	return &TradeHandler{ledgerService: ledgerService, auditService: auditService}
}

// RecordTradeRequest represents the request payload for recording a trade.
// A SELL of an asset that is not held only moves cash; it never opens a short.
type RecordTradeRequest struct {
	Type             models.TransactionType `json:"type" binding:"required,trade_type"`
	Asset            string                 `json:"asset" binding:"required,asset_symbol"`
	AmountUSD        float64                `json:"amount_usd" binding:"required,gt=0"`
	PricePerAssetUSD float64                `json:"price_per_asset_usd" binding:"required,gt=0"`
	ProfileID        *string                `json:"profile_id" binding:"omitempty,uuid"`
	ExecutedAt       *string                `json:"executed_at"`
}

// RecordTrade handles recording a trade.
// @Summary     Record a trade
// @Description Record a BUY or SELL; quantity is derived as amount_usd / price_per_asset_usd
// @Tags        trades
// @Accept      json
// @Produce     json
// @Param       request body RecordTradeRequest true "Trade details"
// @Success     201 {object} models.Transaction "Trade recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Router      /trades [post]
func (h *TradeHandler) RecordTrade(c *gin.Context) {
	var req RecordTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var executedAt time.Time
	if req.ExecutedAt != nil && *req.ExecutedAt != "" {
		parsed, err := parseFlexibleTime(*req.ExecutedAt)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		executedAt = parsed
	}

	trade, err := h.ledgerService.RecordTrade(services.TradeInput{
		Type:             req.Type,
		Asset:            req.Asset,
		AmountUSD:        decimal.NewFromFloat(req.AmountUSD),
		PricePerAssetUSD: decimal.NewFromFloat(req.PricePerAssetUSD),
		ProfileID:        req.ProfileID,
		ExecutedAt:       executedAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("RECORD_TRADE", "transaction", trade.ID, c.ClientIP(),
		map[string]any{"type": trade.Type, "asset": req.Asset, "amount_usd": req.AmountUSD})

	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

// ListTrades handles the trade log.
// @Summary     List trades
// @Description Get a paginated list of BUY and SELL rows, newest first
// @Tags        trades
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated trades"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /trades [get]
func (h *TradeHandler) ListTrades(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.GetTrades(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
