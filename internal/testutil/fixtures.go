package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"presupago/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates an open budget due in thirty days.
func CreateTestBudget(t *testing.T, db *gorm.DB, createdByID uint) *models.Budget {
	t.Helper()
	name := fmt.Sprintf("Test Budget %d", nextID())
	return CreateTestBudgetWithName(t, db, createdByID, name)
}

// CreateTestBudgetWithName creates an open budget with the given name.
func CreateTestBudgetWithName(t *testing.T, db *gorm.DB, createdByID uint, name string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Name:        name,
		CreatedByID: createdByID,
		DueDate:     time.Now().AddDate(0, 0, 30),
		Status:      models.BudgetStatusOpen,
		Period:      models.BudgetPeriodMonthly,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestClosedBudget creates a budget already in the closed state.
func CreateTestClosedBudget(t *testing.T, db *gorm.DB, createdByID uint) *models.Budget {
	t.Helper()

	budget := CreateTestBudget(t, db, createdByID)
	if err := db.Model(budget).Update("status", models.BudgetStatusClosed).Error; err != nil {
		t.Fatalf("failed to close test budget: %v", err)
	}
	budget.Status = models.BudgetStatusClosed
	return budget
}

// CreateTestLineItem creates a line item with the given amount.
func CreateTestLineItem(t *testing.T, db *gorm.DB, budgetID uint, amount int64) *models.LineItem {
	t.Helper()

	item := &models.LineItem{
		BudgetID: budgetID,
		Name:     fmt.Sprintf("Test Item %d", nextID()),
		Amount:   amount,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test line item: %v", err)
	}
	return item
}

// CreateTestTransaction records a payment against a line item.
func CreateTestTransaction(t *testing.T, db *gorm.DB, budgetID, lineItemID uint, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		BudgetID:    budgetID,
		LineItemID:  lineItemID,
		Amount:      decimal.NewFromInt(amount),
		Method:      models.PaymentMethodTransfer,
		PaymentDate: time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestPayable creates a pending payable due in the given number of
// days (which may be negative for an overdue invoice).
func CreateTestPayable(t *testing.T, db *gorm.DB, dueInDays int) *models.Payable {
	t.Helper()

	payable := &models.Payable{
		InvoiceNumber: fmt.Sprintf("INV-%d", nextID()),
		ProviderName:  fmt.Sprintf("Test Provider %d", nextID()),
		ProviderTaxID: "12345678-9",
		Amount:        50000,
		IssueDate:     time.Now().AddDate(0, 0, -1),
		DueDate:       time.Now().AddDate(0, 0, dueInDays),
		Status:        models.PayableStatusPending,
	}
	if err := db.Create(payable).Error; err != nil {
		t.Fatalf("failed to create test payable: %v", err)
	}
	return payable
}
