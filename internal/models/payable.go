package models

import "time"

// PayableStatus represents the lifecycle state of an account payable.
type PayableStatus string

const (
	PayableStatusPending PayableStatus = "pending"
	PayableStatusPaid    PayableStatus = "paid"
	PayableStatusVoid    PayableStatus = "void"
)

// Payable is an accounts-payable invoice tracked independently of budgets.
// It is created pending and transitions once to paid or void; both states
// are terminal and make the record read-only.
type Payable struct {
	Base
	InvoiceNumber string        `gorm:"size:50;not null" json:"invoice_number"`
	ProviderName  string        `gorm:"size:100;not null" json:"provider_name"`
	ProviderTaxID string        `gorm:"size:12;not null" json:"provider_tax_id"`
	Description   string        `json:"description"`
	Amount        int64         `gorm:"not null" json:"amount"`
	IssueDate     time.Time     `gorm:"not null" json:"issue_date"`
	DueDate       time.Time     `gorm:"not null;index" json:"due_date"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
	Status        PayableStatus `gorm:"size:20;not null;default:pending" json:"status"`
	Notes         string        `json:"notes"`

	// Relationships
	History []PaymentHistory `gorm:"foreignKey:PayableID" json:"history,omitempty"`
}

// IsPending reports whether the payable can still be modified.
func (p *Payable) IsPending() bool {
	return p.Status == PayableStatusPending
}

// DaysRemaining returns the number of days until the due date relative to
// today. It is nil once the payable is paid or void.
func (p *Payable) DaysRemaining(today time.Time) *int {
	if !p.IsPending() {
		return nil
	}
	due := time.Date(p.DueDate.Year(), p.DueDate.Month(), p.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(due.Sub(now).Hours() / 24)
	return &days
}

// StatusColor returns the urgency colour for a pending payable: red when
// overdue or due within a day, orange within five days, green otherwise.
// Paid and void payables are gray.
func (p *Payable) StatusColor(today time.Time) string {
	days := p.DaysRemaining(today)
	if days == nil {
		return "gray"
	}
	switch {
	case *days < 0:
		return "red"
	case *days <= 1:
		return "red"
	case *days <= 5:
		return "orange"
	default:
		return "green"
	}
}

// StatusBadgeColor returns the colour for the status badge itself.
func (p *Payable) StatusBadgeColor(today time.Time) string {
	switch p.Status {
	case PayableStatusPaid:
		return "green"
	case PayableStatusVoid:
		return "gray"
	default:
		return p.StatusColor(today)
	}
}
