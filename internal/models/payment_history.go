package models

import "github.com/shopspring/decimal"

// PaymentHistory is an append-only ledger entry recording a payable's state
// transition. Exactly one row is written per transition (pending to paid or
// pending to void); rows are never updated or deleted. The acting user is
// required: when no authenticated caller exists the configured system user
// is recorded instead.
type PaymentHistory struct {
	Base
	PayableID  uint            `gorm:"not null;index" json:"payable_id"`
	AmountPaid decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount_paid"`
	Method     PaymentMethod   `gorm:"size:20;not null;default:transfer" json:"method"`
	Reference  string          `gorm:"size:100" json:"reference"`
	Notes      string          `json:"notes"`
	UserID     uint            `gorm:"not null" json:"user_id"`
	Status     PayableStatus   `gorm:"size:20;not null" json:"status"`

	// Relationships
	Payable Payable `gorm:"foreignKey:PayableID" json:"payable"`
	User    User    `gorm:"foreignKey:UserID" json:"user"`
}
