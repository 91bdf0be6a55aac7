package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
)

// budgetService handles budget and line item business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// dateOnly truncates a time to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// validateBudgetName checks the name is present, within length, and unique
// across budgets ignoring case. excludeID skips the budget being edited.
// The database carries a LOWER(name) unique index as the race-safe backstop.
func (s *budgetService) validateBudgetName(name string, excludeID uint) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if len(name) > 50 {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name cannot exceed 50 characters")
	}

	query := s.db.Model(&models.Budget{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return "", apperrors.ErrDuplicateBudgetName
	}
	return name, nil
}

// validateDueDate requires the due date to fall strictly after today.
func validateDueDate(dueDate time.Time) error {
	if !dateOnly(dueDate).After(dateOnly(time.Now())) {
		return apperrors.ErrDueDateNotFuture
	}
	return nil
}

// CreateBudget creates a new open budget.
func (s *budgetService) CreateBudget(
	name, description string,
	createdByID uint,
	dueDate time.Time,
	period models.BudgetPeriod,
) (*models.Budget, error) {
	name, err := s.validateBudgetName(name, 0)
	if err != nil {
		return nil, err
	}
	if err := validateDueDate(dueDate); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		Name:        name,
		Description: description,
		CreatedByID: createdByID,
		DueDate:     dueDate,
		Status:      models.BudgetStatusOpen,
		Period:      period,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetBudgets returns a paginated list of budgets with optional filters,
// newest first.
func (s *budgetService) GetBudgets(
	page pagination.PageRequest,
	filter BudgetFilter,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		base = base.Where("LOWER(name) LIKE ? OR LOWER(period) LIKE ?", pattern, pattern)
	}
	if filter.CreatedByID != nil {
		base = base.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.CreatedFrom != nil {
		base = base.Where("created_at >= ?", dateOnly(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		base = base.Where("created_at < ?", dateOnly(*filter.CreatedTo).AddDate(0, 0, 1))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("CreatedBy").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget with its line items.
func (s *budgetService) GetBudgetByID(budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Preload("CreatedBy").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_items.id")
	}).First(&budget, budgetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgetDetail returns a budget plus its derived totals and the five most
// recent transactions.
func (s *budgetService) GetBudgetDetail(budgetID uint) (*BudgetDetail, error) {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}

	total, err := s.budgetTotal(budgetID)
	if err != nil {
		return nil, err
	}
	executed, err := s.budgetExecuted(budgetID)
	if err != nil {
		return nil, err
	}

	var recent []models.Transaction
	err = s.db.Preload("LineItem").Where("budget_id = ?", budgetID).
		Order("payment_date DESC, created_at DESC").Limit(5).Find(&recent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &BudgetDetail{
		Budget:             *budget,
		Total:              total,
		TotalExecuted:      executed,
		RecentTransactions: recent,
	}, nil
}

// budgetTotal sums the budget's line item amounts.
func (s *budgetService) budgetTotal(budgetID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.LineItem{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ?", budgetID).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// budgetExecuted sums all transaction amounts posted against the budget.
func (s *budgetService) budgetExecuted(budgetID uint) (decimal.Decimal, error) {
	var executed decimal.Decimal
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ?", budgetID).
		Scan(&executed).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return executed, nil
}

// UpdateBudget updates an open budget's fields, re-running name and due date
// validation.
func (s *budgetService) UpdateBudget(
	budgetID uint,
	name, description string,
	dueDate *time.Time,
	period *models.BudgetPeriod,
) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsOpen() {
		return nil, apperrors.ErrBudgetClosed
	}

	updates := make(map[string]interface{})
	if name != "" && !strings.EqualFold(name, budget.Name) {
		validated, err := s.validateBudgetName(name, budgetID)
		if err != nil {
			return nil, err
		}
		updates["name"] = validated
	}
	if description != "" {
		updates["description"] = description
	}
	if dueDate != nil {
		if err := validateDueDate(*dueDate); err != nil {
			return nil, err
		}
		updates["due_date"] = *dueDate
	}
	if period != nil {
		updates["period"] = *period
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return budget, nil
}

// CloseBudget transitions a budget to closed. The transition is one-way: no
// reopen operation exists.
func (s *budgetService) CloseBudget(budgetID uint) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsOpen() {
		return nil, apperrors.ErrBudgetAlreadyClosed
	}

	if err := s.db.Model(budget).Update("status", models.BudgetStatusClosed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Status = models.BudgetStatusClosed
	return budget, nil
}

// DeleteBudget deletes an open budget together with its line items and
// transactions. Closed budgets cannot be deleted.
func (s *budgetService) DeleteBudget(budgetID uint) error {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return err
	}
	if !budget.IsOpen() {
		return apperrors.ErrBudgetClosed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(budget).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Dashboard returns budget counts by status.
func (s *budgetService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	if err := s.db.Model(&models.Budget{}).Count(&stats.TotalBudgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Budget{}).Where("status = ?", models.BudgetStatusOpen).Count(&stats.OpenBudgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.ClosedBudgets = stats.TotalBudgets - stats.OpenBudgets
	return stats, nil
}

// validateItemName checks presence and per-budget case-insensitive
// uniqueness. excludeID skips the item being edited.
func (s *budgetService) validateItemName(budgetID uint, name string, excludeID uint) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "item name is required")
	}

	query := s.db.Model(&models.LineItem{}).
		Where("budget_id = ? AND LOWER(name) = LOWER(?)", budgetID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return "", apperrors.ErrDuplicateItemName
	}
	return name, nil
}

func validateItemAmount(amount int64) error {
	if amount < models.LineItemMinAmount || amount > models.LineItemMaxAmount {
		return apperrors.ErrAmountOutOfRange
	}
	return nil
}

// AddLineItem adds a line item to an open budget.
func (s *budgetService) AddLineItem(budgetID uint, name, description string, amount int64) (*models.LineItem, error) {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsOpen() {
		return nil, apperrors.ErrBudgetClosed
	}
	if err := validateItemAmount(amount); err != nil {
		return nil, err
	}
	name, err = s.validateItemName(budgetID, name, 0)
	if err != nil {
		return nil, err
	}

	item := &models.LineItem{
		BudgetID:    budgetID,
		Name:        name,
		Description: description,
		Amount:      amount,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// getLineItem fetches an item scoped to a budget.
func (s *budgetService) getLineItem(budgetID, itemID uint) (*models.LineItem, error) {
	var item models.LineItem
	err := s.db.Where("id = ? AND budget_id = ?", itemID, budgetID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLineItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// UpdateLineItem edits a line item while the owning budget is open.
func (s *budgetService) UpdateLineItem(budgetID, itemID uint, name, description string, amount *int64) (*models.LineItem, error) {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsOpen() {
		return nil, apperrors.ErrBudgetClosed
	}
	item, err := s.getLineItem(budgetID, itemID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" && !strings.EqualFold(name, item.Name) {
		validated, err := s.validateItemName(budgetID, name, itemID)
		if err != nil {
			return nil, err
		}
		updates["name"] = validated
	}
	if description != "" {
		updates["description"] = description
	}
	if amount != nil {
		if err := validateItemAmount(*amount); err != nil {
			return nil, err
		}
		updates["amount"] = *amount
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return item, nil
}

// DeleteLineItem removes a line item while the owning budget is open.
func (s *budgetService) DeleteLineItem(budgetID, itemID uint) error {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return err
	}
	if !budget.IsOpen() {
		return apperrors.ErrBudgetClosed
	}
	item, err := s.getLineItem(budgetID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// uniqueItemName disambiguates name against taken (lowercased) by appending
// " (n)" with increasing n, then reserves the result in taken.
func uniqueItemName(name string, taken map[string]struct{}) string {
	final := name
	for n := 1; ; n++ {
		if _, exists := taken[strings.ToLower(final)]; !exists {
			break
		}
		final = fmt.Sprintf("%s (%d)", name, n)
	}
	taken[strings.ToLower(final)] = struct{}{}
	return final
}

// takenItemNames returns the lowercased names already present in a budget.
func (s *budgetService) takenItemNames(budgetID uint) (map[string]struct{}, error) {
	var names []string
	if err := s.db.Model(&models.LineItem{}).Where("budget_id = ?", budgetID).
		Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	taken := make(map[string]struct{}, len(names))
	for _, n := range names {
		taken[strings.ToLower(n)] = struct{}{}
	}
	return taken, nil
}

// CopyItems clones the selected items of one budget into another open
// budget, disambiguating name collisions against both persisted items and
// items copied earlier in the same operation. Returns the number copied.
func (s *budgetService) CopyItems(sourceBudgetID, destBudgetID uint, itemIDs []uint) (int, error) {
	if len(itemIDs) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "select at least one item to copy")
	}
	if _, err := s.GetBudgetByID(sourceBudgetID); err != nil {
		return 0, err
	}
	dest, err := s.GetBudgetByID(destBudgetID)
	if err != nil {
		return 0, err
	}
	if !dest.IsOpen() {
		return 0, apperrors.ErrBudgetClosed
	}

	taken, err := s.takenItemNames(destBudgetID)
	if err != nil {
		return 0, err
	}

	copied := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, itemID := range itemIDs {
			var item models.LineItem
			err := tx.Where("id = ? AND budget_id = ?", itemID, sourceBudgetID).First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			clone := models.LineItem{
				BudgetID:    destBudgetID,
				Name:        uniqueItemName(item.Name, taken),
				Description: item.Description,
				Amount:      item.Amount,
			}
			if err := tx.Create(&clone).Error; err != nil {
				return err
			}
			copied++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return copied, nil
}

// CopyBudget clones a budget and all its line items under a new name. The
// copy starts open regardless of the source's status.
func (s *budgetService) CopyBudget(sourceBudgetID uint, newName string) (*models.Budget, error) {
	source, err := s.GetBudgetByID(sourceBudgetID)
	if err != nil {
		return nil, err
	}
	newName, err = s.validateBudgetName(newName, 0)
	if err != nil {
		return nil, err
	}

	clone := &models.Budget{
		Name:        newName,
		Description: source.Description,
		CreatedByID: source.CreatedByID,
		DueDate:     source.DueDate,
		Status:      models.BudgetStatusOpen,
		Period:      source.Period,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clone).Error; err != nil {
			return err
		}
		taken := make(map[string]struct{}, len(source.Items))
		for _, item := range source.Items {
			itemClone := models.LineItem{
				BudgetID:    clone.ID,
				Name:        uniqueItemName(item.Name, taken),
				Description: item.Description,
				Amount:      item.Amount,
			}
			if err := tx.Create(&itemClone).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return clone, nil
}
