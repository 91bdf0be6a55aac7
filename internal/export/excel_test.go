package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"presupago/internal/models"
	"presupago/internal/services"
)

func sampleComparison() *services.BudgetComparison {
	return &services.BudgetComparison{
		BudgetID:   1,
		BudgetName: "Enero",
		Period:     "monthly",
		Items: []services.ItemComparison{
			{
				LineItemID:      1,
				Name:            "Rent",
				Budgeted:        60000,
				Executed:        decimal.NewFromInt(30000),
				Variance:        decimal.NewFromInt(30000),
				Status:          "within budget",
				PercentExecuted: 50.0,
				PercentOfTotal:  60.0,
			},
			{
				LineItemID:      2,
				Name:            "Food",
				Budgeted:        40000,
				Executed:        decimal.NewFromInt(45000),
				Variance:        decimal.NewFromInt(-5000),
				Status:          "over budget",
				PercentExecuted: 112.5,
				PercentOfTotal:  40.0,
			},
		},
		TotalBudgeted:   100000,
		TotalExecuted:   decimal.NewFromInt(75000),
		Variance:        decimal.NewFromInt(25000),
		PercentExecuted: 75.0,
		Status:          "within budget",
		Message:         "Budget executed at 75.0% of the planned total",
	}
}

func TestComparisonWorkbook(t *testing.T) {
	f, err := ComparisonWorkbook(sampleComparison())
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}
	defer f.Close()

	name, err := f.GetCellValue("Comparison", "A2")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if name != "Rent" {
		t.Errorf("expected first item Rent, got %q", name)
	}

	status, err := f.GetCellValue("Comparison", "G3")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if status != "over budget" {
		t.Errorf("expected over budget status, got %q", status)
	}

	total, err := f.GetCellValue("Comparison", "A4")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if total != "TOTAL" {
		t.Errorf("expected totals row label TOTAL, got %q", total)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty workbook output")
	}
}

func TestPayablesWorkbook(t *testing.T) {
	payables := []models.Payable{
		{
			InvoiceNumber: "F-1001",
			ProviderName:  "Servicios Generales",
			ProviderTaxID: "76543210-5",
			Amount:        150000,
			IssueDate:     time.Now().AddDate(0, 0, -2),
			DueDate:       time.Now().AddDate(0, 0, 14),
			Status:        models.PayableStatusPending,
		},
	}

	f, err := PayablesWorkbook(payables)
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}
	defer f.Close()

	invoice, err := f.GetCellValue("Payables", "A2")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if invoice != "F-1001" {
		t.Errorf("expected invoice F-1001, got %q", invoice)
	}
}

func TestLineItemsWorkbook(t *testing.T) {
	budget := &models.Budget{
		Name: "Enero",
		Items: []models.LineItem{
			{Name: "Rent", Amount: 60000},
			{Name: "Food", Amount: 40000},
		},
	}

	f, err := LineItemsWorkbook(budget)
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}
	defer f.Close()

	name, err := f.GetCellValue("Items", "A2")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if name != "Rent" {
		t.Errorf("expected first item Rent, got %q", name)
	}

	label, err := f.GetCellValue("Items", "A4")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if label != "TOTAL" {
		t.Errorf("expected totals row label TOTAL, got %q", label)
	}
}

func TestPaymentHistoryWorkbook(t *testing.T) {
	entries := []models.PaymentHistory{
		{
			AmountPaid: decimal.NewFromInt(150000),
			Method:     models.PaymentMethodTransfer,
			Reference:  "F-1001",
			Status:     models.PayableStatusPaid,
			Payable: models.Payable{
				InvoiceNumber: "F-1001",
				ProviderName:  "Servicios Generales",
			},
			User: models.User{Email: "system@presupago.local"},
		},
	}

	f, err := PaymentHistoryWorkbook(entries)
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}
	defer f.Close()

	invoice, err := f.GetCellValue("Payment History", "B2")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if invoice != "F-1001" {
		t.Errorf("expected invoice F-1001, got %q", invoice)
	}

	recordedBy, err := f.GetCellValue("Payment History", "H2")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if recordedBy != "system@presupago.local" {
		t.Errorf("expected recorded-by fallback to the email, got %q", recordedBy)
	}
}

func TestPayablesPDF(t *testing.T) {
	payables := []models.Payable{
		{
			InvoiceNumber: "F-1001",
			ProviderName:  "Servicios Generales",
			ProviderTaxID: "76543210-5",
			Amount:        150000,
			IssueDate:     time.Now().AddDate(0, 0, -2),
			DueDate:       time.Now().AddDate(0, 0, 14),
			Status:        models.PayableStatusPending,
		},
	}

	var buf bytes.Buffer
	if err := PayablesPDF(&buf, payables); err != nil {
		t.Fatalf("failed to build PDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("expected output to start with the PDF magic bytes")
	}
}

func TestComparisonPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := ComparisonPDF(&buf, sampleComparison()); err != nil {
		t.Fatalf("failed to build PDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("expected output to start with the PDF magic bytes")
	}
}
