package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"presupago/internal/pagination"
	"presupago/internal/testutil"
)

func TestCompareBudget(t *testing.T) {
	t.Run("open_budget_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewComparisonService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		_, err := svc.CompareBudget(budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_CLOSED")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewComparisonService(db)

		_, err := svc.CompareBudget(9999)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("within_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewComparisonService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)
		rent := testutil.CreateTestLineItem(t, db, budget.ID, 60000)
		food := testutil.CreateTestLineItem(t, db, budget.ID, 40000)
		testutil.CreateTestTransaction(t, db, budget.ID, rent.ID, 30000)
		testutil.CreateTestTransaction(t, db, budget.ID, food.ID, 10000)

		cmp, err := svc.CompareBudget(budget.ID)
		testutil.AssertNoError(t, err)

		if cmp.TotalBudgeted != 100000 {
			t.Errorf("expected total budgeted 100000, got %d", cmp.TotalBudgeted)
		}
		if !cmp.TotalExecuted.Equal(decimal.NewFromInt(40000)) {
			t.Errorf("expected total executed 40000, got %s", cmp.TotalExecuted)
		}
		if cmp.Status != "within budget" {
			t.Errorf("expected within budget, got %s", cmp.Status)
		}
		if cmp.PercentExecuted != 40.0 {
			t.Errorf("expected 40.0%% executed, got %.1f", cmp.PercentExecuted)
		}
		if len(cmp.Items) != 2 {
			t.Fatalf("expected 2 item rows, got %d", len(cmp.Items))
		}
		if cmp.Items[0].PercentOfTotal != 60.0 {
			t.Errorf("expected first item at 60.0%% of total, got %.1f", cmp.Items[0].PercentOfTotal)
		}
	})

	t.Run("over_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewComparisonService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)
		item := testutil.CreateTestLineItem(t, db, budget.ID, 50000)
		testutil.CreateTestTransaction(t, db, budget.ID, item.ID, 70000)

		cmp, err := svc.CompareBudget(budget.ID)
		testutil.AssertNoError(t, err)

		if cmp.Status != "over budget" {
			t.Errorf("expected over budget, got %s", cmp.Status)
		}
		if !cmp.Variance.Equal(decimal.NewFromInt(-20000)) {
			t.Errorf("expected variance -20000, got %s", cmp.Variance)
		}
		if cmp.Items[0].Status != "over budget" {
			t.Errorf("expected item over budget, got %s", cmp.Items[0].Status)
		}
	})

	t.Run("item_without_transactions_fully_within", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewComparisonService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)
		testutil.CreateTestLineItem(t, db, budget.ID, 50000)

		cmp, err := svc.CompareBudget(budget.ID)
		testutil.AssertNoError(t, err)

		if !cmp.Items[0].Executed.IsZero() {
			t.Errorf("expected zero executed, got %s", cmp.Items[0].Executed)
		}
		if cmp.Items[0].PercentExecuted != 0 {
			t.Errorf("expected 0%% executed, got %.1f", cmp.Items[0].PercentExecuted)
		}
	})

	t.Run("empty_budget_percent_is_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewComparisonService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)

		cmp, err := svc.CompareBudget(budget.ID)
		testutil.AssertNoError(t, err)
		if cmp.PercentExecuted != 0 {
			t.Errorf("expected 0%% for empty budget, got %.1f", cmp.PercentExecuted)
		}
	})
}

func TestEligibleBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewComparisonService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestBudget(t, db, user.ID)
	closed := testutil.CreateTestClosedBudget(t, db, user.ID)

	page := pagination.PageRequest{Page: 1, PageSize: 20}
	result, err := svc.EligibleBudgets(page)
	testutil.AssertNoError(t, err)

	if result.TotalItems != 1 {
		t.Fatalf("expected 1 eligible budget, got %d", result.TotalItems)
	}
	if result.Data[0].ID != closed.ID {
		t.Error("expected only the closed budget to be eligible")
	}
}
