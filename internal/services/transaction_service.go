package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
)

// transactionService handles the payment ledger posted against closed budgets.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// closedBudget loads a budget and requires it to be closed. Transactions
// exist only on closed budgets; while a budget is open its items are still
// being edited and no spending is recorded.
func (s *transactionService) closedBudget(budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budget.IsOpen() {
		return nil, apperrors.ErrBudgetNotClosed
	}
	return &budget, nil
}

// PostTransaction records spending against a line item of a closed budget.
// A zero amount is valid and records that an item was settled at no cost.
// Amounts may exceed the item's remaining balance; overruns are surfaced by
// the comparison engine rather than rejected here.
func (s *transactionService) PostTransaction(
	budgetID, lineItemID uint,
	amount decimal.Decimal,
	method models.PaymentMethod,
	paymentDate time.Time,
	reference, notes string,
	userID *uint,
) (*models.Transaction, error) {
	if _, err := s.closedBudget(budgetID); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}

	var item models.LineItem
	if err := s.db.First(&item, lineItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLineItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if item.BudgetID != budgetID {
		return nil, apperrors.ErrItemBudgetMismatch
	}

	tx := &models.Transaction{
		BudgetID:    budgetID,
		LineItemID:  lineItemID,
		Amount:      amount,
		Method:      method,
		Reference:   strings.TrimSpace(reference),
		PaymentDate: dateOnly(paymentDate),
		Notes:       notes,
		UserID:      userID,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetTransactionByID returns a transaction with its budget, item, and user.
func (s *transactionService) GetTransactionByID(transactionID uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.Preload("Budget").Preload("LineItem").Preload("User").
		First(&tx, transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// GetTransactions returns a filtered, paginated ledger ordered by payment
// date and then creation time, newest first, together with the summed amount
// of the full filtered set.
func (s *transactionService) GetTransactions(
	page pagination.PageRequest,
	filter TransactionFilter,
) (*TransactionPage, error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Joins("JOIN budgets ON budgets.id = transactions.budget_id").
		Joins("JOIN line_items ON line_items.id = transactions.line_item_id")
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		base = base.Where(
			"LOWER(budgets.name) LIKE ? OR LOWER(line_items.name) LIKE ? OR LOWER(transactions.reference) LIKE ? OR LOWER(transactions.notes) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Method != nil {
		base = base.Where("transactions.method = ?", *filter.Method)
	}
	if filter.BudgetID != nil {
		base = base.Where("transactions.budget_id = ?", *filter.BudgetID)
	}
	if filter.FromDate != nil {
		base = base.Where("transactions.payment_date >= ?", dateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		base = base.Where("transactions.payment_date < ?", dateOnly(*filter.ToDate).AddDate(0, 0, 1))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var totalAmount decimal.Decimal
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(transactions.amount), 0)").
		Scan(&totalAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Preload("Budget").Preload("LineItem").Preload("User").
		Order("transactions.payment_date DESC, transactions.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &TransactionPage{
		PageResponse: pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems),
		TotalAmount:  totalAmount,
	}, nil
}

// UpdateTransaction edits a transaction. The owning budget must still be
// closed; a retargeted line item must belong to the same budget.
func (s *transactionService) UpdateTransaction(
	transactionID uint,
	lineItemID *uint,
	amount *decimal.Decimal,
	method *models.PaymentMethod,
	paymentDate *time.Time,
	reference, notes *string,
) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.closedBudget(tx.BudgetID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if lineItemID != nil && *lineItemID != tx.LineItemID {
		var item models.LineItem
		if err := s.db.First(&item, *lineItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrLineItemNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if item.BudgetID != tx.BudgetID {
			return nil, apperrors.ErrItemBudgetMismatch
		}
		updates["line_item_id"] = *lineItemID
	}
	if amount != nil {
		if amount.IsNegative() {
			return nil, apperrors.ErrNegativeAmount
		}
		updates["amount"] = *amount
	}
	if method != nil {
		updates["method"] = *method
	}
	if paymentDate != nil {
		updates["payment_date"] = dateOnly(*paymentDate)
	}
	if reference != nil {
		updates["reference"] = strings.TrimSpace(*reference)
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(tx).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetTransactionByID(transactionID)
}

// DeleteTransaction removes a transaction from a closed budget's ledger.
func (s *transactionService) DeleteTransaction(transactionID uint) error {
	tx, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return err
	}
	if _, err := s.closedBudget(tx.BudgetID); err != nil {
		return err
	}
	if err := s.db.Delete(tx).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ItemExecution reports spending progress for one line item of a closed
// budget. Balance may be negative when the item is overspent; percent is
// zero when nothing was budgeted.
func (s *transactionService) ItemExecution(lineItemID uint) (*ItemExecution, error) {
	var item models.LineItem
	if err := s.db.First(&item, lineItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLineItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.closedBudget(item.BudgetID); err != nil {
		return nil, err
	}

	var executed decimal.Decimal
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("line_item_id = ?", lineItemID).
		Scan(&executed).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budgeted := decimal.NewFromInt(item.Amount)
	percent := 0.0
	if item.Amount > 0 {
		percent, _ = executed.Div(budgeted).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	}

	return &ItemExecution{
		LineItemID:      item.ID,
		Name:            item.Name,
		Budgeted:        item.Amount,
		Executed:        executed,
		Balance:         budgeted.Sub(executed),
		PercentExecuted: percent,
	}, nil
}
