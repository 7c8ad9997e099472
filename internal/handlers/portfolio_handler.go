package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// PortfolioHandler handles the fund dashboard and its snapshots.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	auditService     services.AuditServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, auditService services.AuditServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, auditService: auditService}
}

// GetDashboard handles valuing the fund.
// @Summary     Get portfolio dashboard
// @Description Value the fund from the full ledger: metrics, open positions, intraday P&L and client ownership
// @Tags        portfolio
// @Produce     json
// @Success     200 {object} portfolio.Dashboard "Dashboard"
// @Failure     409 {object} ErrorResponse "Superseded by a newer refresh"
// @Failure     500 {object} ErrorResponse "Malformed ledger row"
// @Failure     503 {object} ErrorResponse "Ledger unavailable"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.portfolioService.GetDashboard(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// RecordSnapshotRequest represents the optional request payload for recording a snapshot.
type RecordSnapshotRequest struct {
	RecordedAt *string `json:"recorded_at"`
}

// RecordSnapshot handles storing the current dashboard totals.
// @Summary     Record portfolio snapshot
// @Description Value the fund and store its totals; recording twice at the same instant replaces the snapshot
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Param       request body     RecordSnapshotRequest    false "Snapshot time (defaults to now)"
// @Success     201     {object} models.PortfolioSnapshot "Snapshot recorded"
// @Failure     400     {object} ErrorResponse            "Invalid input"
// @Failure     503     {object} ErrorResponse            "Ledger unavailable"
// @Router      /portfolio/snapshots [post]
func (h *PortfolioHandler) RecordSnapshot(c *gin.Context) {
	var req RecordSnapshotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	var recordedAt time.Time
	if req.RecordedAt != nil && *req.RecordedAt != "" {
		parsed, err := parseFlexibleTime(*req.RecordedAt)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		recordedAt = parsed
	}

	snapshot, err := h.portfolioService.RecordSnapshot(c.Request.Context(), recordedAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("RECORD_SNAPSHOT", "portfolio_snapshot", snapshot.ID, c.ClientIP(),
		map[string]any{"recorded_at": snapshot.RecordedAt, "total_value": snapshot.TotalValue})

	c.JSON(http.StatusCreated, gin.H{"snapshot": snapshot})
}

// GetSnapshots handles retrieving recorded snapshots.
// @Summary     Get portfolio snapshots
// @Description Get paginated portfolio snapshots for a date range
// @Tags        portfolio
// @Produce     json
// @Param       from_date query string true  "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string true  "End date (RFC3339 or YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PortfolioSnapshot] "Paginated snapshots"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /portfolio/snapshots [get]
func (h *PortfolioHandler) GetSnapshots(c *gin.Context) {
	fromStr := c.Query("from_date")
	if fromStr == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date is required"))
		return
	}
	from, err := parseFlexibleTime(fromStr)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	toStr := c.Query("to_date")
	if toStr == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date is required"))
		return
	}
	to, err := parseFlexibleTime(toStr)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.portfolioService.GetSnapshots(from, to, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
