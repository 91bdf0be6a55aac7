package models

// Line item amount bounds enforced at entry time, in whole currency units.
const (
	LineItemMinAmount int64 = 10_000
	LineItemMaxAmount int64 = 10_000_000
)

// LineItem is a budgeted amount within a budget. Its name is unique within
// the owning budget, case-insensitively. Items are mutable only while the
// owning budget is open; after that they only accumulate transactions.
type LineItem struct {
	Base
	BudgetID    uint   `gorm:"not null;index" json:"budget_id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `json:"description"`
	Amount      int64  `gorm:"not null" json:"amount"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:LineItemID" json:"transactions,omitempty"`
}
