package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// ClientHandler handles client profiles and their capital.
type ClientHandler struct {
	clientService services.ClientServicer
	auditService  services.AuditServicer
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService services.ClientServicer, auditService services.AuditServicer) *ClientHandler {
	return &ClientHandler{clientService: clientService, auditService: auditService}
}

// CreateClientRequest represents the request payload for creating a client
type CreateClientRequest struct {
	Name           string  `json:"name" binding:"max=200"`
	Email          string  `json:"email" binding:"required,email"`
	PhoneNumber    *string `json:"phone_number" binding:"omitempty,max=50"`
	InitialDeposit float64 `json:"initial_deposit" binding:"gte=0"`
}

// ManageFundsRequest represents the request payload for a deposit or withdrawal
type ManageFundsRequest struct {
	Action string  `json:"action" binding:"required,fund_action"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreateClient handles creating a client with an optional initial deposit.
// @Summary     Create a client
// @Description Create a client profile; a positive initial deposit is recorded in the ledger in the same transaction
// @Tags        clients
// @Accept      json
// @Produce     json
// @Param       request body CreateClientRequest true "Client details"
// @Success     201 {object} models.Profile "Client created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate email"
// @Router      /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	deposit := decimal.NewFromFloat(req.InitialDeposit)
	profile, err := h.clientService.CreateClient(req.Name, req.Email, req.PhoneNumber, deposit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_CLIENT", "profile", profile.ID, c.ClientIP(),
		map[string]any{"email": profile.Email, "initial_deposit": deposit.String()})

	c.JSON(http.StatusCreated, gin.H{"client": profile})
}

// ListClients handles listing clients.
// @Summary     List clients
// @Description Get a paginated list of clients ordered by name
// @Tags        clients
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Profile] "Paginated clients"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.clientService.ListClients(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetClient handles retrieving a single client.
// @Summary     Get a client
// @Tags        clients
// @Produce     json
// @Param       id path string true "Client ID"
// @Success     200 {object} models.Profile "Client"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Router      /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.clientService.GetClient(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": profile})
}

// ManageFunds handles a client deposit or withdrawal.
// @Summary     Deposit or withdraw client funds
// @Description Update the client's deposited capital and record the matching ledger row atomically
// @Tags        clients
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Client ID"
// @Param       request body ManageFundsRequest true "Funds movement"
// @Success     200 {object} services.FundsChange "Updated client and ledger row"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Failure     422 {object} ErrorResponse "Withdrawal exceeds deposited capital"
// @Router      /clients/{id}/funds [post]
func (h *ClientHandler) ManageFunds(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ManageFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount := decimal.NewFromFloat(req.Amount)
	change, err := h.clientService.ManageFunds(id, services.FundAction(req.Action), amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("MANAGE_FUNDS", "profile", id, c.ClientIP(),
		map[string]any{"action": req.Action, "amount": amount.String(), "transaction_id": change.Transaction.ID})

	c.JSON(http.StatusOK, change)
}
