package services

import (
	"testing"
	"time"

	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/testutil"
)

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget("Enero", "January budget", user.ID, time.Now().AddDate(0, 1, 0), models.BudgetPeriodMonthly)
		testutil.AssertNoError(t, err)

		if budget.ID == 0 {
			t.Fatal("expected non-zero budget ID")
		}
		if budget.Name != "Enero" {
			t.Errorf("expected name Enero, got %s", budget.Name)
		}
		if budget.Status != models.BudgetStatusOpen {
			t.Errorf("expected new budget to be open, got %s", budget.Status)
		}
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget("ENERO", "", user.ID, time.Now().AddDate(0, 1, 0), models.BudgetPeriodMonthly)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget("enero", "", user.ID, time.Now().AddDate(0, 1, 0), models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET_NAME")
	})

	t.Run("due_date_today_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget("Hoy", "", user.ID, time.Now(), models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "DUE_DATE_NOT_FUTURE")
	})

	t.Run("due_date_past_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget("Ayer", "", user.ID, time.Now().AddDate(0, 0, -1), models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "DUE_DATE_NOT_FUTURE")
	})

	t.Run("name_too_long", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		long := make([]byte, 51)
		for i := range long {
			long[i] = 'a'
		}
		_, err := svc.CreateBudget(string(long), "", user.ID, time.Now().AddDate(0, 1, 0), models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetBudgets(t *testing.T) {
	t.Run("filters_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID)
		testutil.CreateTestBudget(t, db, user.ID)
		testutil.CreateTestClosedBudget(t, db, user.ID)

		closed := models.BudgetStatusClosed
		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetBudgets(page, BudgetFilter{Status: &closed})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 closed budget, got %d", result.TotalItems)
		}
	})

	t.Run("search_matches_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudgetWithName(t, db, user.ID, "Marketing Q3")
		testutil.CreateTestBudgetWithName(t, db, user.ID, "Operations Q3")

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetBudgets(page, BudgetFilter{Search: "marketing"})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 match, got %d", result.TotalItems)
		}
		if result.Data[0].Name != "Marketing Q3" {
			t.Errorf("expected Marketing Q3, got %s", result.Data[0].Name)
		}
	})
}

func TestCloseBudget(t *testing.T) {
	t.Run("closes_open_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		closed, err := svc.CloseBudget(budget.ID)
		testutil.AssertNoError(t, err)
		if closed.Status != models.BudgetStatusClosed {
			t.Errorf("expected closed status, got %s", closed.Status)
		}
	})

	t.Run("already_closed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)

		_, err := svc.CloseBudget(budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_ALREADY_CLOSED")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)

		_, err := svc.CloseBudget(9999)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestDeleteBudget(t *testing.T) {
	t.Run("deletes_open_budget_and_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		testutil.CreateTestLineItem(t, db, budget.ID, 50000)

		testutil.AssertNoError(t, svc.DeleteBudget(budget.ID))

		var itemCount int64
		db.Model(&models.LineItem{}).Where("budget_id = ?", budget.ID).Count(&itemCount)
		if itemCount != 0 {
			t.Errorf("expected items to be deleted with the budget, found %d", itemCount)
		}
	})

	t.Run("closed_budget_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)

		err := svc.DeleteBudget(budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_CLOSED")
	})
}

func TestAddLineItem(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		item, err := svc.AddLineItem(budget.ID, "Rent", "", 500000)
		testutil.AssertNoError(t, err)
		if item.Amount != 500000 {
			t.Errorf("expected amount 500000, got %d", item.Amount)
		}
	})

	t.Run("closed_budget_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestClosedBudget(t, db, user.ID)

		_, err := svc.AddLineItem(budget.ID, "Rent", "", 500000)
		testutil.AssertAppError(t, err, "BUDGET_CLOSED")
	})

	t.Run("amount_below_minimum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		_, err := svc.AddLineItem(budget.ID, "Tiny", "", 9999)
		testutil.AssertAppError(t, err, "AMOUNT_OUT_OF_RANGE")
	})

	t.Run("amount_above_maximum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		_, err := svc.AddLineItem(budget.ID, "Huge", "", 10000001)
		testutil.AssertAppError(t, err, "AMOUNT_OUT_OF_RANGE")
	})

	t.Run("duplicate_name_within_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		_, err := svc.AddLineItem(budget.ID, "Rent", "", 500000)
		testutil.AssertNoError(t, err)
		_, err = svc.AddLineItem(budget.ID, "RENT", "", 600000)
		testutil.AssertAppError(t, err, "DUPLICATE_ITEM_NAME")
	})

	t.Run("same_name_in_other_budget_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		a := testutil.CreateTestBudget(t, db, user.ID)
		b := testutil.CreateTestBudget(t, db, user.ID)

		_, err := svc.AddLineItem(a.ID, "Rent", "", 500000)
		testutil.AssertNoError(t, err)
		_, err = svc.AddLineItem(b.ID, "Rent", "", 500000)
		testutil.AssertNoError(t, err)
	})
}

func TestCopyItems(t *testing.T) {
	t.Run("disambiguates_name_collisions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestBudget(t, db, user.ID)
		dest := testutil.CreateTestBudget(t, db, user.ID)

		item, err := svc.AddLineItem(source.ID, "Rent", "", 500000)
		testutil.AssertNoError(t, err)
		_, err = svc.AddLineItem(dest.ID, "Rent", "", 400000)
		testutil.AssertNoError(t, err)

		copied, err := svc.CopyItems(source.ID, dest.ID, []uint{item.ID})
		testutil.AssertNoError(t, err)
		if copied != 1 {
			t.Fatalf("expected 1 item copied, got %d", copied)
		}

		var clone models.LineItem
		if err := db.Where("budget_id = ? AND name = ?", dest.ID, "Rent (1)").First(&clone).Error; err != nil {
			t.Fatalf("expected copy named Rent (1): %v", err)
		}
		if clone.Amount != 500000 {
			t.Errorf("expected copied amount 500000, got %d", clone.Amount)
		}
	})

	t.Run("closed_destination_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestBudget(t, db, user.ID)
		dest := testutil.CreateTestClosedBudget(t, db, user.ID)
		item := testutil.CreateTestLineItem(t, db, source.ID, 50000)

		_, err := svc.CopyItems(source.ID, dest.ID, []uint{item.ID})
		testutil.AssertAppError(t, err, "BUDGET_CLOSED")
	})

	t.Run("skips_items_outside_source", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestBudget(t, db, user.ID)
		other := testutil.CreateTestBudget(t, db, user.ID)
		dest := testutil.CreateTestBudget(t, db, user.ID)
		ours := testutil.CreateTestLineItem(t, db, source.ID, 50000)
		theirs := testutil.CreateTestLineItem(t, db, other.ID, 50000)

		copied, err := svc.CopyItems(source.ID, dest.ID, []uint{ours.ID, theirs.ID})
		testutil.AssertNoError(t, err)
		if copied != 1 {
			t.Errorf("expected only the source's item to be copied, got %d", copied)
		}
	})
}

func TestCopyBudget(t *testing.T) {
	t.Run("total_matches_source", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestBudget(t, db, user.ID)
		testutil.CreateTestLineItem(t, db, source.ID, 100000)
		testutil.CreateTestLineItem(t, db, source.ID, 250000)

		clone, err := svc.CopyBudget(source.ID, "Copy Of Source")
		testutil.AssertNoError(t, err)
		if clone.Status != models.BudgetStatusOpen {
			t.Errorf("expected copy to start open, got %s", clone.Status)
		}

		detailSource, err := svc.GetBudgetDetail(source.ID)
		testutil.AssertNoError(t, err)
		detailClone, err := svc.GetBudgetDetail(clone.ID)
		testutil.AssertNoError(t, err)

		if detailClone.Total != detailSource.Total {
			t.Errorf("expected copy total %d, got %d", detailSource.Total, detailClone.Total)
		}
	})

	t.Run("duplicate_new_name_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestBudgetWithName(t, db, user.ID, "Original")

		_, err := svc.CopyBudget(source.ID, "original")
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET_NAME")
	})
}

func TestUpdateLineItem(t *testing.T) {
	t.Run("rename_to_existing_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		_, err := svc.AddLineItem(budget.ID, "Rent", "", 500000)
		testutil.AssertNoError(t, err)
		item, err := svc.AddLineItem(budget.ID, "Utilities", "", 100000)
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateLineItem(budget.ID, item.ID, "rent", "", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_ITEM_NAME")
	})

	t.Run("item_from_other_budget_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		other := testutil.CreateTestBudget(t, db, user.ID)
		item := testutil.CreateTestLineItem(t, db, other.ID, 50000)

		_, err := svc.UpdateLineItem(budget.ID, item.ID, "Renamed", "", nil)
		testutil.AssertAppError(t, err, "LINE_ITEM_NOT_FOUND")
	})
}

func TestDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestBudget(t, db, user.ID)
	testutil.CreateTestBudget(t, db, user.ID)
	testutil.CreateTestClosedBudget(t, db, user.ID)

	stats, err := svc.Dashboard()
	testutil.AssertNoError(t, err)
	if stats.TotalBudgets != 3 || stats.OpenBudgets != 2 || stats.ClosedBudgets != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
