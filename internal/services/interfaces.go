package services

import (
	"time"

	"github.com/shopspring/decimal"

	"presupago/internal/models"
	"presupago/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	// EnsureSystemUser returns the ID of the designated system user,
	// creating it when absent. Called once at startup; the returned ID is
	// injected into the services that record acting users.
	EnsureSystemUser(email string) (uint, error)
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Status      *models.BudgetStatus
	Search      string
	CreatedByID *uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BudgetDetail is a budget together with its derived totals.
type BudgetDetail struct {
	Budget             models.Budget        `json:"budget"`
	Total              int64                `json:"total"`
	TotalExecuted      decimal.Decimal      `json:"total_executed"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// DashboardStats holds the budget counts shown on the dashboard.
type DashboardStats struct {
	TotalBudgets  int64 `json:"total_budgets"`
	OpenBudgets   int64 `json:"open_budgets"`
	ClosedBudgets int64 `json:"closed_budgets"`
}

// BudgetServicer defines the contract for budget and line item business logic.
type BudgetServicer interface {
	CreateBudget(name, description string, createdByID uint, dueDate time.Time, period models.BudgetPeriod) (*models.Budget, error)
	GetBudgets(page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(budgetID uint) (*models.Budget, error)
	GetBudgetDetail(budgetID uint) (*BudgetDetail, error)
	UpdateBudget(budgetID uint, name, description string, dueDate *time.Time, period *models.BudgetPeriod) (*models.Budget, error)
	CloseBudget(budgetID uint) (*models.Budget, error)
	DeleteBudget(budgetID uint) error
	Dashboard() (*DashboardStats, error)

	AddLineItem(budgetID uint, name, description string, amount int64) (*models.LineItem, error)
	UpdateLineItem(budgetID, itemID uint, name, description string, amount *int64) (*models.LineItem, error)
	DeleteLineItem(budgetID, itemID uint) error

	CopyItems(sourceBudgetID, destBudgetID uint, itemIDs []uint) (int, error)
	CopyBudget(sourceBudgetID uint, newName string) (*models.Budget, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Search   string
	Method   *models.PaymentMethod
	BudgetID *uint
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionPage is a page of transactions plus ledger-level aggregates for
// the full filtered set.
type TransactionPage struct {
	pagination.PageResponse[models.Transaction]
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ItemExecution summarizes spending against a single line item.
type ItemExecution struct {
	LineItemID      uint            `json:"line_item_id"`
	Name            string          `json:"name"`
	Budgeted        int64           `json:"budgeted"`
	Executed        decimal.Decimal `json:"executed"`
	Balance         decimal.Decimal `json:"balance"`
	PercentExecuted float64         `json:"percent_executed"`
}

// TransactionServicer defines the contract for the payment ledger.
type TransactionServicer interface {
	PostTransaction(budgetID, lineItemID uint, amount decimal.Decimal, method models.PaymentMethod, paymentDate time.Time, reference, notes string, userID *uint) (*models.Transaction, error)
	GetTransactionByID(transactionID uint) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*TransactionPage, error)
	UpdateTransaction(transactionID uint, lineItemID *uint, amount *decimal.Decimal, method *models.PaymentMethod, paymentDate *time.Time, reference, notes *string) (*models.Transaction, error)
	DeleteTransaction(transactionID uint) error
	ItemExecution(lineItemID uint) (*ItemExecution, error)
}

// PayableFilter holds optional filter parameters for listing payables.
type PayableFilter struct {
	Status  *models.PayableStatus
	Search  string
	DueFrom *time.Time
	DueTo   *time.Time
}

// HistoryFilter holds optional filter parameters for the payment history.
type HistoryFilter struct {
	Status *models.PayableStatus
	Search string
}

// PayableInput carries the writable fields of a payable.
type PayableInput struct {
	InvoiceNumber string
	ProviderName  string
	ProviderTaxID string
	Description   string
	Amount        int64
	IssueDate     time.Time
	DueDate       time.Time
	Notes         string
}

// PayableServicer defines the contract for accounts payable business logic.
type PayableServicer interface {
	CreatePayable(input PayableInput) (*models.Payable, error)
	GetPayables(page pagination.PageRequest, filter PayableFilter) (*pagination.PageResponse[models.Payable], error)
	GetPayableByID(payableID uint) (*models.Payable, error)
	UpdatePayable(payableID uint, input PayableInput) (*models.Payable, error)
	DeletePayable(payableID uint) error
	RegisterPayment(payableID uint, actingUserID *uint) (*models.Payable, error)
	VoidPayable(payableID uint, reason string, actingUserID *uint) (*models.Payable, error)
	GetPaymentHistory(page pagination.PageRequest, filter HistoryFilter) (*pagination.PageResponse[models.PaymentHistory], error)
}

// ItemComparison is the budgeted-vs-executed breakdown for one line item.
type ItemComparison struct {
	LineItemID      uint            `json:"line_item_id"`
	Name            string          `json:"name"`
	Budgeted        int64           `json:"budgeted"`
	Executed        decimal.Decimal `json:"executed"`
	Variance        decimal.Decimal `json:"variance"`
	Status          string          `json:"status"`
	PercentExecuted float64         `json:"percent_executed"`
	PercentOfTotal  float64         `json:"percent_of_total"`
}

// BudgetComparison aggregates item comparisons into budget-level totals.
type BudgetComparison struct {
	BudgetID        uint             `json:"budget_id"`
	BudgetName      string           `json:"budget_name"`
	Period          string           `json:"period"`
	Items           []ItemComparison `json:"items"`
	TotalBudgeted   int64            `json:"total_budgeted"`
	TotalExecuted   decimal.Decimal  `json:"total_executed"`
	Variance        decimal.Decimal  `json:"variance"`
	PercentExecuted float64          `json:"percent_executed"`
	Status          string           `json:"status"`
	Message         string           `json:"message"`
}

// ComparisonServicer computes budgeted-vs-executed variance for closed budgets.
type ComparisonServicer interface {
	CompareBudget(budgetID uint) (*BudgetComparison, error)
	EligibleBudgets(page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
}
