package models

import "time"

// BudgetStatus represents the lifecycle state of a budget.
type BudgetStatus string

const (
	BudgetStatusOpen   BudgetStatus = "open"
	BudgetStatusClosed BudgetStatus = "closed"
)

// BudgetPeriod represents the period a budget covers.
type BudgetPeriod string

const (
	BudgetPeriodMonthly    BudgetPeriod = "monthly"
	BudgetPeriodQuarterly  BudgetPeriod = "quarterly"
	BudgetPeriodSemiannual BudgetPeriod = "semiannual"
	BudgetPeriodAnnual     BudgetPeriod = "annual"
)

// Budget is a named spending plan with a deadline and a set of line items.
// While open, its line items can be edited; once closed it becomes read-only
// except for transactions posted against its items. Closing is one-way.
type Budget struct {
	Base
	Name        string       `gorm:"size:50;not null" json:"name"`
	Description string       `json:"description"`
	CreatedByID uint         `gorm:"not null" json:"created_by_id"`
	DueDate     time.Time    `gorm:"not null" json:"due_date"`
	Status      BudgetStatus `gorm:"size:10;not null;default:open" json:"status"`
	Period      BudgetPeriod `gorm:"size:20;not null;default:monthly" json:"period"`

	// Relationships
	CreatedBy    User          `gorm:"foreignKey:CreatedByID" json:"created_by"`
	Items        []LineItem    `gorm:"foreignKey:BudgetID" json:"items,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:BudgetID" json:"transactions,omitempty"`
}

// IsOpen reports whether the budget can still be modified.
func (b *Budget) IsOpen() bool {
	return b.Status == BudgetStatusOpen
}
