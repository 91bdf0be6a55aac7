package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/services"
)

// --- mock payable service ---

type mockPayableService struct {
	createPayableFn   func(input services.PayableInput) (*models.Payable, error)
	registerPaymentFn func(payableID uint, actingUserID *uint) (*models.Payable, error)
	voidPayableFn     func(payableID uint, reason string, actingUserID *uint) (*models.Payable, error)
}

func (m *mockPayableService) CreatePayable(input services.PayableInput) (*models.Payable, error) {
	if m.createPayableFn != nil {
		return m.createPayableFn(input)
	}
	return &models.Payable{Status: models.PayableStatusPending}, nil
}

func (m *mockPayableService) GetPayables(page pagination.PageRequest, filter services.PayableFilter) (*pagination.PageResponse[models.Payable], error) {
	resp := pagination.NewPageResponse([]models.Payable{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockPayableService) GetPayableByID(payableID uint) (*models.Payable, error) {
	return &models.Payable{Status: models.PayableStatusPending}, nil
}

func (m *mockPayableService) UpdatePayable(payableID uint, input services.PayableInput) (*models.Payable, error) {
	return &models.Payable{Status: models.PayableStatusPending}, nil
}

func (m *mockPayableService) DeletePayable(payableID uint) error {
	return nil
}

func (m *mockPayableService) RegisterPayment(payableID uint, actingUserID *uint) (*models.Payable, error) {
	if m.registerPaymentFn != nil {
		return m.registerPaymentFn(payableID, actingUserID)
	}
	return &models.Payable{Status: models.PayableStatusPaid}, nil
}

func (m *mockPayableService) VoidPayable(payableID uint, reason string, actingUserID *uint) (*models.Payable, error) {
	if m.voidPayableFn != nil {
		return m.voidPayableFn(payableID, reason, actingUserID)
	}
	return &models.Payable{Status: models.PayableStatusVoid}, nil
}

func (m *mockPayableService) GetPaymentHistory(page pagination.PageRequest, filter services.HistoryFilter) (*pagination.PageResponse[models.PaymentHistory], error) {
	resp := pagination.NewPageResponse([]models.PaymentHistory{}, 1, 20, 0)
	return &resp, nil
}

var _ services.PayableServicer = (*mockPayableService)(nil)

func setupPayableRouter(handler *PayableHandler, authenticated bool) *gin.Engine {
	r := gin.New()
	group := r.Group("")
	if authenticated {
		group.Use(injectUserID(7))
	}
	group.POST("/payables", handler.CreatePayable)
	group.POST("/payables/:id/pay", handler.RegisterPayment)
	group.POST("/payables/:id/void", handler.VoidPayable)
	return r
}

// --- tests ---

func TestPayableHandler_CreatePayable(t *testing.T) {
	setupTest()

	t.Run("returns 201 on success", func(t *testing.T) {
		r := setupPayableRouter(NewPayableHandler(&mockPayableService{}), true)

		issue := time.Now().Format(time.RFC3339)
		due := time.Now().AddDate(0, 0, 14).Format(time.RFC3339)
		rec := doRequest(r, http.MethodPost, "/payables",
			`{"invoice_number":"F-1001","provider_name":"Servicios Generales","provider_tax_id":"76543210-5","amount":150000,"issue_date":"`+issue+`","due_date":"`+due+`"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on malformed tax id", func(t *testing.T) {
		r := setupPayableRouter(NewPayableHandler(&mockPayableService{}), true)

		issue := time.Now().Format(time.RFC3339)
		due := time.Now().AddDate(0, 0, 14).Format(time.RFC3339)
		rec := doRequest(r, http.MethodPost, "/payables",
			`{"invoice_number":"F-1001","provider_name":"Servicios","provider_tax_id":"bad","amount":150000,"issue_date":"`+issue+`","due_date":"`+due+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPayableHandler_RegisterPayment(t *testing.T) {
	setupTest()

	t.Run("passes authenticated user to service", func(t *testing.T) {
		var gotUserID *uint
		svc := &mockPayableService{
			registerPaymentFn: func(_ uint, actingUserID *uint) (*models.Payable, error) {
				gotUserID = actingUserID
				return &models.Payable{Status: models.PayableStatusPaid}, nil
			},
		}
		r := setupPayableRouter(NewPayableHandler(svc), true)

		rec := doRequest(r, http.MethodPost, "/payables/1/pay", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotUserID == nil || *gotUserID != 7 {
			t.Errorf("expected acting user 7, got %v", gotUserID)
		}
	})

	t.Run("passes nil user when anonymous", func(t *testing.T) {
		called := false
		svc := &mockPayableService{
			registerPaymentFn: func(_ uint, actingUserID *uint) (*models.Payable, error) {
				called = true
				if actingUserID != nil {
					t.Errorf("expected nil acting user, got %d", *actingUserID)
				}
				return &models.Payable{Status: models.PayableStatusPaid}, nil
			},
		}
		r := setupPayableRouter(NewPayableHandler(svc), false)

		rec := doRequest(r, http.MethodPost, "/payables/1/pay", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !called {
			t.Fatal("expected service to be called")
		}
	})

	t.Run("returns 409 when not pending", func(t *testing.T) {
		svc := &mockPayableService{
			registerPaymentFn: func(_ uint, _ *uint) (*models.Payable, error) {
				return nil, apperrors.ErrPayableNotPending
			},
		}
		r := setupPayableRouter(NewPayableHandler(svc), true)

		rec := doRequest(r, http.MethodPost, "/payables/1/pay", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PAYABLE_NOT_PENDING")
	})
}

func TestPayableHandler_VoidPayable(t *testing.T) {
	setupTest()

	t.Run("passes reason to service", func(t *testing.T) {
		var gotReason string
		svc := &mockPayableService{
			voidPayableFn: func(_ uint, reason string, _ *uint) (*models.Payable, error) {
				gotReason = reason
				return &models.Payable{Status: models.PayableStatusVoid}, nil
			},
		}
		r := setupPayableRouter(NewPayableHandler(svc), true)

		rec := doRequest(r, http.MethodPost, "/payables/1/void", `{"reason":"duplicate invoice"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotReason != "duplicate invoice" {
			t.Errorf("expected reason to be forwarded, got %q", gotReason)
		}
	})

	t.Run("empty body allowed", func(t *testing.T) {
		r := setupPayableRouter(NewPayableHandler(&mockPayableService{}), true)

		rec := doRequest(r, http.MethodPost, "/payables/1/void", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
