package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"presupago/internal/models"
	"presupago/internal/services"
)

// tablePDF renders a landscape A4 document containing a title and a single
// bordered table. Columns listed in leftCols are left-aligned; the rest are
// right-aligned.
func tablePDF(w io.Writer, title string, headers []string, widths []float64, leftCols map[int]bool, rows [][]string) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(48, 84, 150)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, v := range row {
			align := "R"
			if leftCols[i] {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// BudgetsPDF writes the filtered budget list as a tabular PDF.
func BudgetsPDF(w io.Writer, budgets []models.Budget) error {
	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{
			b.Name,
			b.Description,
			string(b.Period),
			string(b.Status),
			b.DueDate.Format(dateLayout),
			b.CreatedBy.FullName(),
			b.CreatedAt.Format(dateLayout),
		})
	}
	return tablePDF(w, "Budgets",
		[]string{"Name", "Description", "Period", "Status", "Due Date", "Created By", "Created"},
		[]float64{55, 70, 28, 24, 30, 40, 30},
		map[int]bool{0: true, 1: true, 5: true},
		rows)
}

// LineItemsPDF writes a budget's line items as a tabular PDF with a totals
// row.
func LineItemsPDF(w io.Writer, budget *models.Budget) error {
	rows := make([][]string, 0, len(budget.Items)+1)
	var total int64
	for _, item := range budget.Items {
		total += item.Amount
		rows = append(rows, []string{item.Name, item.Description, formatInt(item.Amount)})
	}
	rows = append(rows, []string{"TOTAL", "", formatInt(total)})
	return tablePDF(w, "Items: "+budget.Name,
		[]string{"Item", "Description", "Amount"},
		[]float64{110, 120, 47},
		map[int]bool{0: true, 1: true},
		rows)
}

// TransactionsPDF writes the filtered transaction ledger as a tabular PDF.
func TransactionsPDF(w io.Writer, transactions []models.Transaction) error {
	rows := make([][]string, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, []string{
			tx.PaymentDate.Format(dateLayout),
			tx.Budget.Name,
			tx.LineItem.Name,
			tx.Amount.StringFixed(2),
			string(tx.Method),
			tx.Reference,
		})
	}
	return tablePDF(w, "Transactions",
		[]string{"Date", "Budget", "Item", "Amount", "Method", "Reference"},
		[]float64{28, 62, 62, 32, 28, 65},
		map[int]bool{1: true, 2: true, 5: true},
		rows)
}

// PayablesPDF writes the payables list as a tabular PDF including the
// urgency derivations.
func PayablesPDF(w io.Writer, payables []models.Payable) error {
	now := time.Now()
	rows := make([][]string, 0, len(payables))
	for _, p := range payables {
		days := ""
		if d := p.DaysRemaining(now); d != nil {
			days = strconv.Itoa(*d)
		}
		rows = append(rows, []string{
			p.InvoiceNumber,
			p.ProviderName,
			p.ProviderTaxID,
			formatInt(p.Amount),
			p.IssueDate.Format(dateLayout),
			p.DueDate.Format(dateLayout),
			string(p.Status),
			days,
		})
	}
	return tablePDF(w, "Accounts Payable",
		[]string{"Invoice", "Provider", "Tax ID", "Amount", "Issue Date", "Due Date", "Status", "Days"},
		[]float64{35, 60, 28, 30, 28, 28, 25, 20},
		map[int]bool{0: true, 1: true, 2: true, 6: true},
		rows)
}

// PaymentHistoryPDF writes payment history entries as a tabular PDF. Entries
// must have their Payable and User associations loaded.
func PaymentHistoryPDF(w io.Writer, entries []models.PaymentHistory) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Format(dateLayout),
			e.Payable.InvoiceNumber,
			e.Payable.ProviderName,
			e.AmountPaid.StringFixed(2),
			string(e.Method),
			string(e.Status),
			e.User.FullName(),
		})
	}
	return tablePDF(w, "Payment History",
		[]string{"Date", "Invoice", "Provider", "Amount", "Method", "Status", "Recorded By"},
		[]float64{28, 35, 65, 32, 28, 25, 64},
		map[int]bool{1: true, 2: true, 5: true, 6: true},
		rows)
}

// ComparisonPDF writes a budget comparison report as a tabular PDF.
func ComparisonPDF(w io.Writer, cmp *services.BudgetComparison) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Budget Comparison: "+cmp.BudgetName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Budget Comparison: "+cmp.BudgetName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Period: "+cmp.Period, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{80, 32, 32, 32, 26, 26, 32}
	headers := []string{"Item", "Budgeted", "Executed", "Variance", "% Exec", "% Total", "Status"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(48, 84, 150)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range cmp.Items {
		cells := []string{
			item.Name,
			formatInt(item.Budgeted),
			item.Executed.StringFixed(2),
			item.Variance.StringFixed(2),
			formatPercent(item.PercentExecuted),
			formatPercent(item.PercentOfTotal),
			item.Status,
		}
		for i, v := range cells {
			align := "R"
			if i == 0 || i == len(cells)-1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	totals := []string{
		"TOTAL",
		formatInt(cmp.TotalBudgeted),
		cmp.TotalExecuted.StringFixed(2),
		cmp.Variance.StringFixed(2),
		formatPercent(cmp.PercentExecuted),
		"100.0%",
		cmp.Status,
	}
	for i, v := range totals {
		align := "R"
		if i == 0 || i == len(totals)-1 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, v, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, cmp.Message, "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
