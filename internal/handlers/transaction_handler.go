package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/services"
)

// TransactionHandler handles payment ledger requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for posting a
// transaction against a closed budget.
type CreateTransactionRequest struct {
	BudgetID    uint                 `json:"budget_id" binding:"required"`
	LineItemID  uint                 `json:"line_item_id" binding:"required"`
	Amount      decimal.Decimal      `json:"amount"`
	Method      models.PaymentMethod `json:"method" binding:"required,payment_method"`
	PaymentDate time.Time            `json:"payment_date" binding:"required"`
	Reference   string               `json:"reference" binding:"max=100"`
	Notes       string               `json:"notes" binding:"max=500"`
}

// UpdateTransactionRequest represents the request payload for editing a
// transaction.
type UpdateTransactionRequest struct {
	LineItemID  *uint                 `json:"line_item_id"`
	Amount      *decimal.Decimal      `json:"amount"`
	Method      *models.PaymentMethod `json:"method" binding:"omitempty,payment_method"`
	PaymentDate *time.Time            `json:"payment_date"`
	Reference   *string               `json:"reference" binding:"omitempty,max=100"`
	Notes       *string               `json:"notes" binding:"omitempty,max=500"`
}

// CreateTransaction posts a payment against a line item of a closed budget.
// @Summary     Post a transaction
// @Description Record spending against a line item of a closed budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction posted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget or item not found"
// @Failure     409 {object} ErrorResponse "Budget not closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.PostTransaction(
		req.BudgetID, req.LineItemID, req.Amount, req.Method,
		req.PaymentDate, req.Reference, req.Notes, getOptionalUserID(c),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetTransactions lists the payment ledger with filters and a running total.
// @Summary     Get transactions
// @Description Get a filtered, paginated ledger with the summed amount of the full filtered set
// @Tags        transactions
// @Produce     json
// @Param       search    query string false "Search budget, item, or reference"
// @Param       method    query string false "Filter by payment method"
// @Param       budget_id query int    false "Filter by budget"
// @Param       from_date query string false "Payment date on or after (YYYY-MM-DD)"
// @Param       to_date   query string false "Payment date on or before (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} services.TransactionPage "Paginated ledger"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.TransactionFilter
	filter.Search = c.Query("search")
	if v := c.Query("method"); v != "" {
		m := models.PaymentMethod(v)
		switch m {
		case models.PaymentMethodTransfer, models.PaymentMethodCash,
			models.PaymentMethodCheck, models.PaymentMethodCard, models.PaymentMethodOther:
			filter.Method = &m
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method"))
			return
		}
	}
	if v := c.Query("budget_id"); v != "" {
		id, err := parsePathIDValue(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget_id must be a positive integer"))
			return
		}
		filter.BudgetID = &id
	}

	var err error
	if filter.FromDate, err = parseDateQuery(c, "from_date"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseDateQuery(c, "to_date"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns a single transaction.
// @Summary     Get a transaction
// @Description Get a transaction with its budget, item, and user
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction edits a transaction of a closed budget.
// @Summary     Update a transaction
// @Description Update a transaction; the owning budget must still be closed
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int                      true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.UpdateTransaction(
		id, req.LineItemID, req.Amount, req.Method, req.PaymentDate, req.Reference, req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction removes a transaction.
// @Summary     Delete a transaction
// @Description Delete a transaction from a closed budget's ledger
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ItemExecution reports spending progress for one line item.
// @Summary     Line item execution
// @Description Get budgeted, executed, balance, and percent executed for a line item
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Line item ID"
// @Success     200 {object} services.ItemExecution "Execution summary"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Failure     409 {object} ErrorResponse "Budget not closed"
// @Router      /items/{id}/execution [get]
func (h *TransactionHandler) ItemExecution(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	exec, err := h.transactionService.ItemExecution(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, exec)
}
