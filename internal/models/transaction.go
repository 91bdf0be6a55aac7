package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodOther    PaymentMethod = "other"
)

// Transaction is a payment recorded against a line item of a closed budget.
// The budget reference is denormalized for listing. Amounts of zero are
// valid (a recorded zero-value payment), and no balance-sufficiency check is
// applied: a line item's balance may go negative.
type Transaction struct {
	Base
	BudgetID    uint            `gorm:"not null;index" json:"budget_id"`
	LineItemID  uint            `gorm:"not null;index" json:"line_item_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method      PaymentMethod   `gorm:"size:20;not null;default:transfer" json:"method"`
	Reference   string          `gorm:"size:100" json:"reference"`
	PaymentDate time.Time       `gorm:"not null;index" json:"payment_date"`
	Notes       string          `json:"notes"`
	UserID      *uint           `json:"user_id,omitempty"`

	// Relationships
	Budget   Budget   `gorm:"foreignKey:BudgetID" json:"budget"`
	LineItem LineItem `gorm:"foreignKey:LineItemID" json:"line_item"`
	User     *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
