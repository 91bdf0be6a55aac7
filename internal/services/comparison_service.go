package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
)

// comparisonService computes budgeted-versus-executed variance. Only closed
// budgets are eligible: an open budget's items are still being edited and a
// comparison over them would be meaningless.
type comparisonService struct {
	db *gorm.DB
}

// NewComparisonService creates a new ComparisonServicer.
func NewComparisonService(db *gorm.DB) ComparisonServicer {
	return &comparisonService{db: db}
}

const (
	comparisonWithinBudget = "within budget"
	comparisonOverBudget   = "over budget"
)

// percentOf returns numerator/denominator as a percentage rounded to one
// decimal, or zero when the denominator is zero.
func percentOf(numerator decimal.Decimal, denominator decimal.Decimal) float64 {
	if denominator.IsZero() {
		return 0
	}
	pct, _ := numerator.Div(denominator).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}

// CompareBudget builds the per-item and budget-level variance report for a
// closed budget.
func (s *comparisonService) CompareBudget(budgetID uint) (*BudgetComparison, error) {
	var budget models.Budget
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_items.id")
	}).First(&budget, budgetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budget.IsOpen() {
		return nil, apperrors.ErrBudgetNotClosed
	}

	type itemSum struct {
		LineItemID uint
		Total      decimal.Decimal
	}
	var sums []itemSum
	err = s.db.Model(&models.Transaction{}).
		Select("line_item_id, COALESCE(SUM(amount), 0) AS total").
		Where("budget_id = ?", budgetID).
		Group("line_item_id").
		Scan(&sums).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	executedByItem := make(map[uint]decimal.Decimal, len(sums))
	for _, sum := range sums {
		executedByItem[sum.LineItemID] = sum.Total
	}

	var totalBudgeted int64
	for _, item := range budget.Items {
		totalBudgeted += item.Amount
	}
	totalBudgetedDec := decimal.NewFromInt(totalBudgeted)

	items := make([]ItemComparison, 0, len(budget.Items))
	totalExecuted := decimal.Zero
	for _, item := range budget.Items {
		budgeted := decimal.NewFromInt(item.Amount)
		executed := executedByItem[item.ID]
		variance := budgeted.Sub(executed)
		totalExecuted = totalExecuted.Add(executed)

		status := comparisonWithinBudget
		if variance.IsNegative() {
			status = comparisonOverBudget
		}

		items = append(items, ItemComparison{
			LineItemID:      item.ID,
			Name:            item.Name,
			Budgeted:        item.Amount,
			Executed:        executed,
			Variance:        variance,
			Status:          status,
			PercentExecuted: percentOf(executed, budgeted),
			PercentOfTotal:  percentOf(budgeted, totalBudgetedDec),
		})
	}

	variance := totalBudgetedDec.Sub(totalExecuted)
	status := comparisonWithinBudget
	message := fmt.Sprintf("Budget executed at %.1f%% of the planned total", percentOf(totalExecuted, totalBudgetedDec))
	if variance.IsNegative() {
		status = comparisonOverBudget
		message = fmt.Sprintf("Budget overrun by %s", variance.Neg().StringFixed(2))
	}

	return &BudgetComparison{
		BudgetID:        budget.ID,
		BudgetName:      budget.Name,
		Period:          string(budget.Period),
		Items:           items,
		TotalBudgeted:   totalBudgeted,
		TotalExecuted:   totalExecuted,
		Variance:        variance,
		PercentExecuted: percentOf(totalExecuted, totalBudgetedDec),
		Status:          status,
		Message:         message,
	}, nil
}

// EligibleBudgets lists the closed budgets available for comparison, newest
// first.
func (s *comparisonService) EligibleBudgets(page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("status = ?", models.BudgetStatusClosed)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}
