// Package export renders budgets, ledgers, payables, payment history, and
// comparison reports as downloadable XLSX and PDF documents.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"presupago/internal/models"
	"presupago/internal/services"
)

const dateLayout = "2006-01-02"

// Currency formats: whole units for entered amounts, two decimals for
// ledger amounts.
const (
	moneyFmt  = "$#,##0"
	ledgerFmt = "#,##0.00"
)

// headerStyle returns the style ID for bold white-on-dark header cells.
func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"305496"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func numberStyle(f *excelize.File, format string) (int, error) {
	return f.NewStyle(&excelize.Style{CustomNumFmt: &format})
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// styleColumn applies a cell style to one column across the given data rows.
func styleColumn(f *excelize.File, sheet string, col, firstRow, lastRow, style int) error {
	if lastRow < firstRow {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(col, firstRow)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(col, lastRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// newSheet creates a workbook with a single named sheet and a styled header
// row, returning the file and the header style ID.
func newSheet(name string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", name)
	style, err := headerStyle(f)
	if err != nil {
		return nil, err
	}
	if err := writeHeader(f, name, style, headers); err != nil {
		return nil, err
	}
	return f, nil
}

// BudgetsWorkbook renders the filtered budget list as an XLSX workbook.
func BudgetsWorkbook(budgets []models.Budget) (*excelize.File, error) {
	sheet := "Budgets"
	f, err := newSheet(sheet, []string{"Name", "Description", "Period", "Status", "Due Date", "Created By", "Created At"})
	if err != nil {
		return nil, err
	}

	for i, b := range budgets {
		values := []interface{}{
			b.Name, b.Description, string(b.Period), string(b.Status),
			b.DueDate.Format(dateLayout), b.CreatedBy.FullName(),
			b.CreatedAt.Format(dateLayout),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "G", 16); err != nil {
		return nil, err
	}
	return f, nil
}

// LineItemsWorkbook renders a budget's line items as an XLSX workbook with a
// totals row.
func LineItemsWorkbook(budget *models.Budget) (*excelize.File, error) {
	sheet := "Items"
	f, err := newSheet(sheet, []string{"Item", "Description", "Amount"})
	if err != nil {
		return nil, err
	}

	var total int64
	row := 2
	for _, item := range budget.Items {
		total += item.Amount
		if err := writeRow(f, sheet, row, []interface{}{item.Name, item.Description, item.Amount}); err != nil {
			return nil, err
		}
		row++
	}
	if err := writeRow(f, sheet, row, []interface{}{"TOTAL", "", total}); err != nil {
		return nil, err
	}

	money, err := numberStyle(f, moneyFmt)
	if err != nil {
		return nil, err
	}
	if err := styleColumn(f, sheet, 3, 2, row, money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "B", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "C", 16); err != nil {
		return nil, err
	}
	return f, nil
}

// ComparisonWorkbook renders a budget comparison report as an XLSX workbook
// with one row per line item and a totals row.
func ComparisonWorkbook(cmp *services.BudgetComparison) (*excelize.File, error) {
	sheet := "Comparison"
	f, err := newSheet(sheet, []string{"Item", "Budgeted", "Executed", "Variance", "% Executed", "% of Total", "Status"})
	if err != nil {
		return nil, err
	}

	row := 2
	for _, item := range cmp.Items {
		executed, _ := item.Executed.Float64()
		variance, _ := item.Variance.Float64()
		values := []interface{}{
			item.Name, item.Budgeted, executed, variance,
			item.PercentExecuted, item.PercentOfTotal, item.Status,
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	totalExecuted, _ := cmp.TotalExecuted.Float64()
	totalVariance, _ := cmp.Variance.Float64()
	totals := []interface{}{
		"TOTAL", cmp.TotalBudgeted, totalExecuted, totalVariance,
		cmp.PercentExecuted, 100.0, cmp.Status,
	}
	if err := writeRow(f, sheet, row, totals); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "G", 14); err != nil {
		return nil, err
	}
	return f, nil
}

// TransactionsWorkbook renders a transaction ledger as an XLSX workbook.
func TransactionsWorkbook(transactions []models.Transaction) (*excelize.File, error) {
	sheet := "Transactions"
	f, err := newSheet(sheet, []string{"Date", "Budget", "Item", "Amount", "Method", "Reference", "Notes"})
	if err != nil {
		return nil, err
	}

	for i, tx := range transactions {
		amount, _ := tx.Amount.Float64()
		values := []interface{}{
			tx.PaymentDate.Format(dateLayout), tx.Budget.Name, tx.LineItem.Name,
			amount, string(tx.Method), tx.Reference, tx.Notes,
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	ledger, err := numberStyle(f, ledgerFmt)
	if err != nil {
		return nil, err
	}
	if err := styleColumn(f, sheet, 4, 2, len(transactions)+1, ledger); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "G", 18); err != nil {
		return nil, err
	}
	return f, nil
}

// PayablesWorkbook renders the payables list as an XLSX workbook with the
// urgency derivations included.
func PayablesWorkbook(payables []models.Payable) (*excelize.File, error) {
	sheet := "Payables"
	f, err := newSheet(sheet, []string{"Invoice", "Provider", "Tax ID", "Amount", "Issue Date", "Due Date", "Status", "Days Remaining"})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i, p := range payables {
		days := ""
		if d := p.DaysRemaining(now); d != nil {
			days = fmt.Sprintf("%d", *d)
		}
		values := []interface{}{
			p.InvoiceNumber, p.ProviderName, p.ProviderTaxID, p.Amount,
			p.IssueDate.Format(dateLayout), p.DueDate.Format(dateLayout),
			string(p.Status), days,
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	money, err := numberStyle(f, moneyFmt)
	if err != nil {
		return nil, err
	}
	if err := styleColumn(f, sheet, 4, 2, len(payables)+1, money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "H", 16); err != nil {
		return nil, err
	}
	return f, nil
}

// PaymentHistoryWorkbook renders payment history entries as an XLSX workbook.
// Entries must have their Payable and User associations loaded.
func PaymentHistoryWorkbook(entries []models.PaymentHistory) (*excelize.File, error) {
	sheet := "Payment History"
	f, err := newSheet(sheet, []string{"Date", "Invoice", "Provider", "Amount Paid", "Method", "Reference", "Status", "Recorded By"})
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		amount, _ := e.AmountPaid.Float64()
		values := []interface{}{
			e.CreatedAt.Format(dateLayout), e.Payable.InvoiceNumber,
			e.Payable.ProviderName, amount, string(e.Method), e.Reference,
			string(e.Status), e.User.FullName(),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	ledger, err := numberStyle(f, ledgerFmt)
	if err != nil {
		return nil, err
	}
	if err := styleColumn(f, sheet, 4, 2, len(entries)+1, ledger); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "H", 18); err != nil {
		return nil, err
	}
	return f, nil
}
