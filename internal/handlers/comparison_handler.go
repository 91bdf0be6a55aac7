package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "presupago/internal/errors"
	"presupago/internal/pagination"
	"presupago/internal/services"
)

// ComparisonHandler handles budgeted-versus-executed reporting requests.
type ComparisonHandler struct {
	comparisonService services.ComparisonServicer
}

// NewComparisonHandler creates a new ComparisonHandler.
func NewComparisonHandler(comparisonService services.ComparisonServicer) *ComparisonHandler {
	return &ComparisonHandler{comparisonService: comparisonService}
}

// CompareBudget returns the variance report for a closed budget.
// @Summary     Compare a budget
// @Description Get the per-item and budget-level budgeted-vs-executed report for a closed budget
// @Tags        comparisons
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetComparison "Comparison report"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget not closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /comparisons/{id} [get]
func (h *ComparisonHandler) CompareBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	comparison, err := h.comparisonService.CompareBudget(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// EligibleBudgets lists the closed budgets available for comparison.
// @Summary     Eligible budgets
// @Description Get the closed budgets available for comparison, newest first
// @Tags        comparisons
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /comparisons [get]
func (h *ComparisonHandler) EligibleBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.comparisonService.EligibleBudgets(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
