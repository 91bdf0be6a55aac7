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

// BudgetHandler handles budget and line item requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name        string              `json:"name" binding:"required,min=1,max=50"`
	Description string              `json:"description" binding:"max=500"`
	DueDate     time.Time           `json:"due_date" binding:"required"`
	Period      models.BudgetPeriod `json:"period" binding:"required,budget_period"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name        string               `json:"name" binding:"omitempty,min=1,max=50"`
	Description string               `json:"description" binding:"omitempty,max=500"`
	DueDate     *time.Time           `json:"due_date"`
	Period      *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
}

// LineItemRequest represents the request payload for creating a line item.
type LineItemRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=500"`
	Amount      int64  `json:"amount" binding:"required"`
}

// UpdateLineItemRequest represents the request payload for updating a line item.
type UpdateLineItemRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Amount      *int64 `json:"amount"`
}

// CopyItemsRequest selects the items to copy into a destination budget.
type CopyItemsRequest struct {
	DestBudgetID uint   `json:"dest_budget_id" binding:"required"`
	ItemIDs      []uint `json:"item_ids" binding:"required,min=1"`
}

// CopyBudgetRequest names the full copy of a budget.
type CopyBudgetRequest struct {
	NewName string `json:"new_name" binding:"required,min=1,max=50"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new open budget with a future due date
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(req.Name, req.Description, userID, req.DueDate, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets.
// @Summary     Get budgets
// @Description Get a paginated list of budgets with optional filters
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       status       query string false "Filter by status (open/closed)"
// @Param       search       query string false "Search by name or period"
// @Param       created_by   query int    false "Filter by creator user ID"
// @Param       created_from query string false "Created on or after (YYYY-MM-DD)"
// @Param       created_to   query string false "Created on or before (YYYY-MM-DD)"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.BudgetFilter
	if v := c.Query("status"); v != "" {
		s := models.BudgetStatus(v)
		if s != models.BudgetStatusOpen && s != models.BudgetStatusClosed {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'open' or 'closed'"))
			return
		}
		filter.Status = &s
	}
	filter.Search = c.Query("search")
	if v := c.Query("created_by"); v != "" {
		id, err := parsePathIDValue(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "created_by must be a positive integer"))
			return
		}
		filter.CreatedByID = &id
	}

	var err error
	if filter.CreatedFrom, err = parseDateQuery(c, "created_from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.CreatedTo, err = parseDateQuery(c, "created_to"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.GetBudgets(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget returns a budget with its items, totals, and recent activity.
// @Summary     Get budget detail
// @Description Get a budget with line items, derived totals, and recent transactions
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetDetail "Budget detail"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.budgetService.GetBudgetDetail(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateBudget edits an open budget.
// @Summary     Update a budget
// @Description Update an open budget's name, description, due date, or period
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget closed"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(id, req.Name, req.Description, req.DueDate, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// CloseBudget closes a budget, making it read-only except for transactions.
// @Summary     Close a budget
// @Description Transition a budget to closed; the transition is one-way
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Budget closed"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already closed"
// @Router      /budgets/{id}/close [post]
func (h *BudgetHandler) CloseBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CloseBudget(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget deletes an open budget and everything under it.
// @Summary     Delete a budget
// @Description Delete an open budget together with its items and transactions
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget closed"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Dashboard returns budget counts by status.
// @Summary     Dashboard stats
// @Description Get budget counts by lifecycle state
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardStats "Dashboard stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *BudgetHandler) Dashboard(c *gin.Context) {
	stats, err := h.budgetService.Dashboard()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AddLineItem adds a line item to an open budget.
// @Summary     Add a line item
// @Description Add a line item to an open budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Budget ID"
// @Param       request body LineItemRequest true "Line item details"
// @Success     201 {object} models.LineItem "Line item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget closed"
// @Router      /budgets/{id}/items [post]
func (h *BudgetHandler) AddLineItem(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.budgetService.AddLineItem(id, req.Name, req.Description, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateLineItem edits a line item of an open budget.
// @Summary     Update a line item
// @Description Update a line item while the owning budget is open
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Budget ID"
// @Param       item_id path int                   true "Line item ID"
// @Param       request body UpdateLineItemRequest true "Fields to update"
// @Success     200 {object} models.LineItem "Line item updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Budget closed"
// @Router      /budgets/{id}/items/{item_id} [put]
func (h *BudgetHandler) UpdateLineItem(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	itemID, err := parsePathID(c, "item_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.budgetService.UpdateLineItem(id, itemID, req.Name, req.Description, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteLineItem removes a line item from an open budget.
// @Summary     Delete a line item
// @Description Delete a line item while the owning budget is open
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int true "Budget ID"
// @Param       item_id path int true "Line item ID"
// @Success     204 "Line item deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Budget closed"
// @Router      /budgets/{id}/items/{item_id} [delete]
func (h *BudgetHandler) DeleteLineItem(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	itemID, err := parsePathID(c, "item_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteLineItem(id, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CopyItems copies selected items into another open budget.
// @Summary     Copy line items
// @Description Copy selected line items into another open budget, renaming collisions
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Source budget ID"
// @Param       request body CopyItemsRequest true "Destination and items"
// @Success     200 {object} map[string]int "Number of items copied"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Destination closed"
// @Router      /budgets/{id}/copy-items [post]
func (h *BudgetHandler) CopyItems(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CopyItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	copied, err := h.budgetService.CopyItems(id, req.DestBudgetID, req.ItemIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"copied": copied})
}

// CopyBudget clones a budget and all its items under a new name.
// @Summary     Copy a budget
// @Description Clone a budget and all its line items under a new unique name
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Source budget ID"
// @Param       request body CopyBudgetRequest true "Name for the copy"
// @Success     201 {object} models.Budget "Budget copied"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/copy [post]
func (h *BudgetHandler) CopyBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CopyBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CopyBudget(id, req.NewName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}
