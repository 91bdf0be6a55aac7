package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	apperrors "presupago/internal/errors"
	"presupago/internal/export"
	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/services"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// exportPageSize caps how many rows an export pulls in one query.
const exportPageSize = 100

// ExportHandler serves XLSX and PDF downloads.
type ExportHandler struct {
	budgetService      services.BudgetServicer
	comparisonService  services.ComparisonServicer
	transactionService services.TransactionServicer
	payableService     services.PayableServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(
	budgetService services.BudgetServicer,
	comparisonService services.ComparisonServicer,
	transactionService services.TransactionServicer,
	payableService services.PayableServicer,
) *ExportHandler {
	return &ExportHandler{
		budgetService:      budgetService,
		comparisonService:  comparisonService,
		transactionService: transactionService,
		payableService:     payableService,
	}
}

func attachmentName(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102"), ext)
}

func sendWorkbook(c *gin.Context, f *excelize.File, prefix string) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+attachmentName(prefix, "xlsx")+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func sendPDF(c *gin.Context, buf *bytes.Buffer, prefix string) {
	c.Header("Content-Disposition", `attachment; filename="`+attachmentName(prefix, "pdf")+`"`)
	c.Data(http.StatusOK, pdfContentType, buf.Bytes())
}

func exportPage() pagination.PageRequest {
	return pagination.PageRequest{Page: 1, PageSize: exportPageSize}
}

func budgetExportFilter(c *gin.Context) services.BudgetFilter {
	var filter services.BudgetFilter
	filter.Search = c.Query("search")
	if v := c.Query("status"); v != "" {
		status := models.BudgetStatus(v)
		filter.Status = &status
	}
	return filter
}

func transactionExportFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	filter.Search = c.Query("search")
	if v := c.Query("budget_id"); v != "" {
		id, err := parsePathIDValue(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget_id must be a positive integer")
		}
		filter.BudgetID = &id
	}
	return filter, nil
}

func payableExportFilter(c *gin.Context) services.PayableFilter {
	var filter services.PayableFilter
	filter.Search = c.Query("search")
	if v := c.Query("status"); v != "" {
		status := models.PayableStatus(v)
		filter.Status = &status
	}
	return filter
}

func historyExportFilter(c *gin.Context) services.HistoryFilter {
	var filter services.HistoryFilter
	filter.Search = c.Query("search")
	if v := c.Query("status"); v != "" {
		status := models.PayableStatus(v)
		filter.Status = &status
	}
	return filter
}

// BudgetsXLSX downloads the filtered budget list as a spreadsheet.
// @Summary     Export budgets as XLSX
// @Description Download the budget list, with the same filters as the list endpoint
// @Tags        exports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       status query string false "Filter by status (open/closed)"
// @Param       search query string false "Search name or period"
// @Success     200 {file} binary "XLSX file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/budgets/xlsx [get]
func (h *ExportHandler) BudgetsXLSX(c *gin.Context) {
	result, err := h.budgetService.GetBudgets(exportPage(), budgetExportFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	f, err := export.BudgetsWorkbook(result.Data)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendWorkbook(c, f, "budgets")
}

// BudgetsPDF downloads the filtered budget list as a PDF.
// @Summary     Export budgets as PDF
// @Description Download the budget list, with the same filters as the list endpoint
// @Tags        exports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       status query string false "Filter by status (open/closed)"
// @Param       search query string false "Search name or period"
// @Success     200 {file} binary "PDF file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/budgets/pdf [get]
func (h *ExportHandler) BudgetsPDF(c *gin.Context) {
	result, err := h.budgetService.GetBudgets(exportPage(), budgetExportFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.BudgetsPDF(&buf, result.Data); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendPDF(c, &buf, "budgets")
}

// BudgetItemsXLSX downloads a budget's line items as a spreadsheet.
// @Summary     Export a budget's items as XLSX
// @Description Download the line items of one budget with a totals row
// @Tags        exports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {file} binary "XLSX file"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /exports/budgets/{id}/items/xlsx [get]
func (h *ExportHandler) BudgetItemsXLSX(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	f, err := export.LineItemsWorkbook(budget)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendWorkbook(c, f, "items")
}

// BudgetItemsPDF downloads a budget's line items as a PDF.
// @Summary     Export a budget's items as PDF
// @Description Download the line items of one budget with a totals row
// @Tags        exports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {file} binary "PDF file"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /exports/budgets/{id}/items/pdf [get]
func (h *ExportHandler) BudgetItemsPDF(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.LineItemsPDF(&buf, budget); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendPDF(c, &buf, "items")
}

// ComparisonXLSX downloads a budget comparison as a spreadsheet.
// @Summary     Export comparison as XLSX
// @Description Download the budgeted-vs-executed report for a closed budget as a spreadsheet
// @Tags        exports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {file} binary "XLSX file"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget not closed"
// @Router      /exports/comparisons/{id}/xlsx [get]
func (h *ExportHandler) ComparisonXLSX(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cmp, err := h.comparisonService.CompareBudget(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	f, err := export.ComparisonWorkbook(cmp)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendWorkbook(c, f, "comparison")
}

// ComparisonPDF downloads a budget comparison as a PDF report.
// @Summary     Export comparison as PDF
// @Description Download the budgeted-vs-executed report for a closed budget as a PDF
// @Tags        exports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {file} binary "PDF file"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget not closed"
// @Router      /exports/comparisons/{id}/pdf [get]
func (h *ExportHandler) ComparisonPDF(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cmp, err := h.comparisonService.CompareBudget(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.ComparisonPDF(&buf, cmp); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendPDF(c, &buf, "comparison")
}

// TransactionsXLSX downloads the filtered transaction ledger as a spreadsheet.
// @Summary     Export transactions as XLSX
// @Description Download the transaction ledger, with the same filters as the list endpoint
// @Tags        exports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       budget_id query int    false "Filter by budget"
// @Param       search    query string false "Search budget, item, or reference"
// @Success     200 {file} binary "XLSX file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/transactions/xlsx [get]
func (h *ExportHandler) TransactionsXLSX(c *gin.Context) {
	filter, err := transactionExportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(exportPage(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	f, err := export.TransactionsWorkbook(result.Data)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendWorkbook(c, f, "transactions")
}

// TransactionsPDF downloads the filtered transaction ledger as a PDF.
// @Summary     Export transactions as PDF
// @Description Download the transaction ledger, with the same filters as the list endpoint
// @Tags        exports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       budget_id query int    false "Filter by budget"
// @Param       search    query string false "Search budget, item, or reference"
// @Success     200 {file} binary "PDF file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/transactions/pdf [get]
func (h *ExportHandler) TransactionsPDF(c *gin.Context) {
	filter, err := transactionExportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(exportPage(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.TransactionsPDF(&buf, result.Data); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendPDF(c, &buf, "transactions")
}

// PayablesXLSX downloads the payables list as a spreadsheet.
// @Summary     Export payables as XLSX
// @Description Download the payables list with urgency derivations
// @Tags        exports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       status query string false "Filter by status (pending/paid/void)"
// @Param       search query string false "Search provider or invoice number"
// @Success     200 {file} binary "XLSX file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/payables/xlsx [get]
func (h *ExportHandler) PayablesXLSX(c *gin.Context) {
	result, err := h.payableService.GetPayables(exportPage(), payableExportFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	f, err := export.PayablesWorkbook(result.Data)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendWorkbook(c, f, "payables")
}

// PayablesPDF downloads the payables list as a PDF.
// @Summary     Export payables as PDF
// @Description Download the payables list with urgency derivations
// @Tags        exports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       status query string false "Filter by status (pending/paid/void)"
// @Param       search query string false "Search provider or invoice number"
// @Success     200 {file} binary "PDF file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/payables/pdf [get]
func (h *ExportHandler) PayablesPDF(c *gin.Context) {
	result, err := h.payableService.GetPayables(exportPage(), payableExportFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.PayablesPDF(&buf, result.Data); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendPDF(c, &buf, "payables")
}

// HistoryXLSX downloads the payment history as a spreadsheet.
// @Summary     Export payment history as XLSX
// @Description Download payment history entries, with the same filters as the list endpoint
// @Tags        exports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       status query string false "Filter by status (paid/void)"
// @Param       search query string false "Search provider or invoice number"
// @Success     200 {file} binary "XLSX file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/payables/history/xlsx [get]
func (h *ExportHandler) HistoryXLSX(c *gin.Context) {
	result, err := h.payableService.GetPaymentHistory(exportPage(), historyExportFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	f, err := export.PaymentHistoryWorkbook(result.Data)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendWorkbook(c, f, "payment-history")
}

// HistoryPDF downloads the payment history as a PDF.
// @Summary     Export payment history as PDF
// @Description Download payment history entries, with the same filters as the list endpoint
// @Tags        exports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       status query string false "Filter by status (paid/void)"
// @Param       search query string false "Search provider or invoice number"
// @Success     200 {file} binary "PDF file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /exports/payables/history/pdf [get]
func (h *ExportHandler) HistoryPDF(c *gin.Context) {
	result, err := h.payableService.GetPaymentHistory(exportPage(), historyExportFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.PaymentHistoryPDF(&buf, result.Data); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	sendPDF(c, &buf, "payment-history")
}
