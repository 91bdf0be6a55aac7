package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/services"
	"presupago/internal/validator"
)

// --- shared test helpers ---

func setupTest() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn    func(name, description string, createdByID uint, dueDate time.Time, period models.BudgetPeriod) (*models.Budget, error)
	getBudgetsFn      func(page pagination.PageRequest, filter services.BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	getBudgetDetailFn func(budgetID uint) (*services.BudgetDetail, error)
	closeBudgetFn     func(budgetID uint) (*models.Budget, error)
	deleteBudgetFn    func(budgetID uint) error
	addLineItemFn     func(budgetID uint, name, description string, amount int64) (*models.LineItem, error)
	copyItemsFn       func(sourceBudgetID, destBudgetID uint, itemIDs []uint) (int, error)
	copyBudgetFn      func(sourceBudgetID uint, newName string) (*models.Budget, error)
}

func (m *mockBudgetService) CreateBudget(name, description string, createdByID uint, dueDate time.Time, period models.BudgetPeriod) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(name, description, createdByID, dueDate, period)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgets(page pagination.PageRequest, filter services.BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	if m.getBudgetsFn != nil {
		return m.getBudgetsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) GetBudgetByID(budgetID uint) (*models.Budget, error) {
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetDetail(budgetID uint) (*services.BudgetDetail, error) {
	if m.getBudgetDetailFn != nil {
		return m.getBudgetDetailFn(budgetID)
	}
	return &services.BudgetDetail{}, nil
}

func (m *mockBudgetService) UpdateBudget(budgetID uint, name, description string, dueDate *time.Time, period *models.BudgetPeriod) (*models.Budget, error) {
	return &models.Budget{}, nil
}

func (m *mockBudgetService) CloseBudget(budgetID uint) (*models.Budget, error) {
	if m.closeBudgetFn != nil {
		return m.closeBudgetFn(budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(budgetID uint) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(budgetID)
	}
	return nil
}

func (m *mockBudgetService) Dashboard() (*services.DashboardStats, error) {
	return &services.DashboardStats{}, nil
}

func (m *mockBudgetService) AddLineItem(budgetID uint, name, description string, amount int64) (*models.LineItem, error) {
	if m.addLineItemFn != nil {
		return m.addLineItemFn(budgetID, name, description, amount)
	}
	return &models.LineItem{}, nil
}

func (m *mockBudgetService) UpdateLineItem(budgetID, itemID uint, name, description string, amount *int64) (*models.LineItem, error) {
	return &models.LineItem{}, nil
}

func (m *mockBudgetService) DeleteLineItem(budgetID, itemID uint) error {
	return nil
}

func (m *mockBudgetService) CopyItems(sourceBudgetID, destBudgetID uint, itemIDs []uint) (int, error) {
	if m.copyItemsFn != nil {
		return m.copyItemsFn(sourceBudgetID, destBudgetID, itemIDs)
	}
	return len(itemIDs), nil
}

func (m *mockBudgetService) CopyBudget(sourceBudgetID uint, newName string) (*models.Budget, error) {
	if m.copyBudgetFn != nil {
		return m.copyBudgetFn(sourceBudgetID, newName)
	}
	return &models.Budget{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.POST("/budgets/:id/close", handler.CloseBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	auth.POST("/budgets/:id/items", handler.AddLineItem)
	auth.POST("/budgets/:id/copy-items", handler.CopyItems)
	auth.POST("/budgets/:id/copy", handler.CopyBudget)
	return r
}

// --- tests ---

func TestBudgetHandler_CreateBudget(t *testing.T) {
	setupTest()

	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(name, _ string, createdByID uint, _ time.Time, period models.BudgetPeriod) (*models.Budget, error) {
				return &models.Budget{
					Base:        models.Base{ID: 1},
					Name:        name,
					CreatedByID: createdByID,
					Status:      models.BudgetStatusOpen,
					Period:      period,
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		due := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"name":"Enero","due_date":"`+due+`","period":"monthly"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		due := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"due_date":"`+due+`","period":"monthly"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid period", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		due := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"name":"Enero","due_date":"`+due+`","period":"weekly"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on duplicate name", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_, _ string, _ uint, _ time.Time, _ models.BudgetPeriod) (*models.Budget, error) {
				return nil, apperrors.ErrDuplicateBudgetName
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		due := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"name":"Enero","due_date":"`+due+`","period":"monthly"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_BUDGET_NAME")
	})
}

func TestBudgetHandler_CloseBudget(t *testing.T) {
	setupTest()

	t.Run("returns 409 when already closed", func(t *testing.T) {
		svc := &mockBudgetService{
			closeBudgetFn: func(_ uint) (*models.Budget, error) {
				return nil, apperrors.ErrBudgetAlreadyClosed
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, http.MethodPost, "/budgets/1/close", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_ALREADY_CLOSED")
	})

	t.Run("returns 400 on non-numeric id", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, http.MethodPost, "/budgets/abc/close", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_CopyItems(t *testing.T) {
	setupTest()

	t.Run("returns copied count", func(t *testing.T) {
		svc := &mockBudgetService{
			copyItemsFn: func(_, _ uint, itemIDs []uint) (int, error) {
				return len(itemIDs), nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, http.MethodPost, "/budgets/1/copy-items",
			`{"dest_budget_id":2,"item_ids":[3,4]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["copied"] != float64(2) {
			t.Errorf("expected 2 copied, got %v", result["copied"])
		}
	})

	t.Run("returns 400 on empty item list", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, http.MethodPost, "/budgets/1/copy-items",
			`{"dest_budget_id":2,"item_ids":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_AddLineItem(t *testing.T) {
	setupTest()

	t.Run("returns 409 when budget closed", func(t *testing.T) {
		svc := &mockBudgetService{
			addLineItemFn: func(_ uint, _, _ string, _ int64) (*models.LineItem, error) {
				return nil, apperrors.ErrBudgetClosed
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, http.MethodPost, "/budgets/1/items",
			`{"name":"Rent","amount":500000}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_CLOSED")
	})
}
