package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/services"
)

// PayableHandler handles accounts payable requests.
type PayableHandler struct {
	payableService services.PayableServicer
}

// NewPayableHandler creates a new PayableHandler.
func NewPayableHandler(payableService services.PayableServicer) *PayableHandler {
	return &PayableHandler{payableService: payableService}
}

// PayableRequest represents the request payload for creating or updating a
// payable.
type PayableRequest struct {
	InvoiceNumber string    `json:"invoice_number" binding:"required,min=1,max=50"`
	ProviderName  string    `json:"provider_name" binding:"required,min=1,max=100,provider_name"`
	ProviderTaxID string    `json:"provider_tax_id" binding:"required,tax_id"`
	Description   string    `json:"description" binding:"max=500"`
	Amount        int64     `json:"amount" binding:"required,gt=0"`
	IssueDate     time.Time `json:"issue_date" binding:"required"`
	DueDate       time.Time `json:"due_date" binding:"required"`
	Notes         string    `json:"notes" binding:"max=500"`
}

// VoidPayableRequest carries the reason a payable is being voided.
type VoidPayableRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PayableResponse is a payable enriched with urgency derivations.
type PayableResponse struct {
	models.Payable
	DaysRemaining    *int   `json:"days_remaining"`
	StatusColor      string `json:"status_color"`
	StatusBadgeColor string `json:"status_badge_color"`
}

func toPayableResponse(p models.Payable) PayableResponse {
	now := time.Now()
	return PayableResponse{
		Payable:          p,
		DaysRemaining:    p.DaysRemaining(now),
		StatusColor:      p.StatusColor(now),
		StatusBadgeColor: p.StatusBadgeColor(now),
	}
}

func (h *PayableHandler) input(req PayableRequest) services.PayableInput {
	return services.PayableInput{
		InvoiceNumber: req.InvoiceNumber,
		ProviderName:  req.ProviderName,
		ProviderTaxID: req.ProviderTaxID,
		Description:   req.Description,
		Amount:        req.Amount,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
}

// CreatePayable registers a new pending payable.
// @Summary     Create a payable
// @Description Register a new pending accounts-payable invoice
// @Tags        payables
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PayableRequest true "Payable details"
// @Success     201 {object} PayableResponse "Payable created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payables [post]
func (h *PayableHandler) CreatePayable(c *gin.Context) {
	var req PayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payable, err := h.payableService.CreatePayable(h.input(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payable": toPayableResponse(*payable)})
}

// GetPayables lists payables with urgency derivations.
// @Summary     Get payables
// @Description Get a filtered, paginated list of payables ordered by due date
// @Tags        payables
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (pending/paid/void/all); defaults to pending"
// @Param       search    query string false "Search invoice, provider, or tax ID"
// @Param       due_from  query string false "Due on or after (YYYY-MM-DD)"
// @Param       due_to    query string false "Due on or before (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[PayableResponse] "Paginated payables"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payables [get]
func (h *PayableHandler) GetPayables(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// The list shows pending invoices unless another status (or "all") is
	// asked for.
	var filter services.PayableFilter
	switch v := c.Query("status"); v {
	case "":
		pending := models.PayableStatusPending
		filter.Status = &pending
	case "all":
	default:
		s := models.PayableStatus(v)
		switch s {
		case models.PayableStatusPending, models.PayableStatusPaid, models.PayableStatusVoid:
			filter.Status = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'pending', 'paid', 'void', or 'all'"))
			return
		}
	}
	filter.Search = c.Query("search")

	var err error
	if filter.DueFrom, err = parseDateQuery(c, "due_from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.DueTo, err = parseDateQuery(c, "due_to"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.payableService.GetPayables(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	responses := make([]PayableResponse, 0, len(result.Data))
	for _, p := range result.Data {
		responses = append(responses, toPayableResponse(p))
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(responses, result.Page, result.PageSize, result.TotalItems))
}

// GetPayable returns a payable with its payment history.
// @Summary     Get a payable
// @Description Get a payable with its payment history, newest first
// @Tags        payables
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Payable ID"
// @Success     200 {object} PayableResponse "Payable"
// @Failure     404 {object} ErrorResponse "Payable not found"
// @Router      /payables/{id} [get]
func (h *PayableHandler) GetPayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payable, err := h.payableService.GetPayableByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": toPayableResponse(*payable)})
}

// UpdatePayable edits a pending payable.
// @Summary     Update a payable
// @Description Update a payable while it is still pending
// @Tags        payables
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Payable ID"
// @Param       request body PayableRequest true "Fields to update"
// @Success     200 {object} PayableResponse "Payable updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payable not found"
// @Failure     409 {object} ErrorResponse "Payable no longer pending"
// @Router      /payables/{id} [put]
func (h *PayableHandler) UpdatePayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payable, err := h.payableService.UpdatePayable(id, h.input(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": toPayableResponse(*payable)})
}

// DeletePayable removes a pending payable.
// @Summary     Delete a payable
// @Description Delete a payable while it is still pending
// @Tags        payables
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Payable ID"
// @Success     204 "Payable deleted"
// @Failure     404 {object} ErrorResponse "Payable not found"
// @Failure     409 {object} ErrorResponse "Payable no longer pending"
// @Router      /payables/{id} [delete]
func (h *PayableHandler) DeletePayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.payableService.DeletePayable(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterPayment marks a pending payable as paid in full today.
// @Summary     Register a payment
// @Description Mark a pending payable as paid in full; records one history entry
// @Tags        payables
// @Produce     json
// @Param       id path int true "Payable ID"
// @Success     200 {object} PayableResponse "Payable paid"
// @Failure     404 {object} ErrorResponse "Payable not found"
// @Failure     409 {object} ErrorResponse "Payable no longer pending"
// @Router      /payables/{id}/pay [post]
func (h *PayableHandler) RegisterPayment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payable, err := h.payableService.RegisterPayment(id, getOptionalUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": toPayableResponse(*payable)})
}

// VoidPayable cancels a pending payable.
// @Summary     Void a payable
// @Description Cancel a pending payable; records one zero-amount history entry
// @Tags        payables
// @Accept      json
// @Produce     json
// @Param       id      path int                true "Payable ID"
// @Param       request body VoidPayableRequest false "Void reason"
// @Success     200 {object} PayableResponse "Payable voided"
// @Failure     404 {object} ErrorResponse "Payable not found"
// @Failure     409 {object} ErrorResponse "Payable no longer pending"
// @Router      /payables/{id}/void [post]
func (h *PayableHandler) VoidPayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req VoidPayableRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payable, err := h.payableService.VoidPayable(id, req.Reason, getOptionalUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": toPayableResponse(*payable)})
}

// GetPaymentHistory lists the append-only payment history.
// @Summary     Get payment history
// @Description Get the payment history across all payables, newest first
// @Tags        payables
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by outcome (paid/void)"
// @Param       search    query string false "Search invoice or provider"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PaymentHistory] "Paginated history"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payables/history [get]
func (h *PayableHandler) GetPaymentHistory(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.HistoryFilter
	if v := c.Query("status"); v != "" {
		s := models.PayableStatus(v)
		if s != models.PayableStatusPaid && s != models.PayableStatusVoid {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'paid' or 'void'"))
			return
		}
		filter.Status = &s
	}
	filter.Search = c.Query("search")

	result, err := h.payableService.GetPaymentHistory(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
