package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "presupago/internal/errors"
	"presupago/internal/models"
	"presupago/internal/pagination"
	"presupago/internal/validator"
)

// payableService handles accounts payable business logic. systemUserID is
// the fallback identity recorded on payment history rows when no
// authenticated user performed the action.
type payableService struct {
	db           *gorm.DB
	systemUserID uint
}

// NewPayableService creates a new PayableServicer. systemUserID must be the
// ID returned by UserServicer.EnsureSystemUser at startup.
func NewPayableService(db *gorm.DB, systemUserID uint) PayableServicer {
	return &payableService{db: db, systemUserID: systemUserID}
}

// validatePayableInput normalizes and checks the writable fields of a
// payable. excludeID skips the payable being edited in the invoice number
// uniqueness check.
func (s *payableService) validatePayableInput(input *PayableInput, excludeID uint) error {
	input.InvoiceNumber = strings.TrimSpace(input.InvoiceNumber)
	input.ProviderName = strings.TrimSpace(input.ProviderName)
	input.ProviderTaxID = strings.TrimSpace(input.ProviderTaxID)

	if input.InvoiceNumber == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invoice number is required")
	}
	if len(input.InvoiceNumber) > 50 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invoice number cannot exceed 50 characters")
	}
	if !validator.ValidProviderName(input.ProviderName) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "provider name contains invalid characters")
	}
	if !validator.ValidTaxID(input.ProviderTaxID) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "provider tax ID must match the format 12345678-9")
	}
	if input.Amount < 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be at least 1")
	}

	query := s.db.Model(&models.Payable{}).
		Where("LOWER(invoice_number) = LOWER(?)", input.InvoiceNumber)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateInvoiceNumber
	}
	return nil
}

// CreatePayable registers a new pending payable.
func (s *payableService) CreatePayable(input PayableInput) (*models.Payable, error) {
	if err := s.validatePayableInput(&input, 0); err != nil {
		return nil, err
	}

	payable := &models.Payable{
		InvoiceNumber: input.InvoiceNumber,
		ProviderName:  input.ProviderName,
		ProviderTaxID: input.ProviderTaxID,
		Description:   input.Description,
		Amount:        input.Amount,
		IssueDate:     dateOnly(input.IssueDate),
		DueDate:       dateOnly(input.DueDate),
		Status:        models.PayableStatusPending,
		Notes:         input.Notes,
	}
	if err := s.db.Create(payable).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payable, nil
}

// GetPayables returns a filtered, paginated list ordered by due date with
// the most urgent first.
func (s *payableService) GetPayables(
	page pagination.PageRequest,
	filter PayableFilter,
) (*pagination.PageResponse[models.Payable], error) {
	page.Defaults()

	base := s.db.Model(&models.Payable{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		base = base.Where(
			"LOWER(invoice_number) LIKE ? OR LOWER(provider_name) LIKE ? OR LOWER(provider_tax_id) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.DueFrom != nil {
		base = base.Where("due_date >= ?", dateOnly(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		base = base.Where("due_date < ?", dateOnly(*filter.DueTo).AddDate(0, 0, 1))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payables []models.Payable
	if err := base.Order("due_date ASC, id ASC").
		Scopes(pagination.Paginate(page)).Find(&payables).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payables, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPayableByID returns a payable with its payment history, newest first.
func (s *payableService) GetPayableByID(payableID uint) (*models.Payable, error) {
	var payable models.Payable
	err := s.db.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_histories.created_at DESC")
	}).Preload("History.User").First(&payable, payableID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayableNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payable, nil
}

// pendingPayable loads a payable and requires it to still be pending. Paid
// and void are terminal states.
func (s *payableService) pendingPayable(payableID uint) (*models.Payable, error) {
	payable, err := s.GetPayableByID(payableID)
	if err != nil {
		return nil, err
	}
	if !payable.IsPending() {
		return nil, apperrors.ErrPayableNotPending
	}
	return payable, nil
}

// UpdatePayable edits a payable while it is still pending.
func (s *payableService) UpdatePayable(payableID uint, input PayableInput) (*models.Payable, error) {
	payable, err := s.pendingPayable(payableID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePayableInput(&input, payableID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"invoice_number":  input.InvoiceNumber,
		"provider_name":   input.ProviderName,
		"provider_tax_id": input.ProviderTaxID,
		"description":     input.Description,
		"amount":          input.Amount,
		"issue_date":      dateOnly(input.IssueDate),
		"due_date":        dateOnly(input.DueDate),
		"notes":           input.Notes,
	}
	if err := s.db.Model(payable).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payable, nil
}

// DeletePayable removes a pending payable. Paid and void payables are kept
// for the audit trail.
func (s *payableService) DeletePayable(payableID uint) error {
	payable, err := s.pendingPayable(payableID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(payable).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// resolveActingUser returns the user to record on a history row: the
// authenticated caller when present, the system user otherwise.
func (s *payableService) resolveActingUser(actingUserID *uint) uint {
	if actingUserID != nil {
		return *actingUserID
	}
	return s.systemUserID
}

// RegisterPayment marks a pending payable as paid in full today and appends
// exactly one payment history row. The status check and the writes run in
// one database transaction so a payable can never be paid twice.
func (s *payableService) RegisterPayment(payableID uint, actingUserID *uint) (*models.Payable, error) {
	var payable *models.Payable
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Payable
		if err := tx.First(&p, payableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPayableNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !p.IsPending() {
			return apperrors.ErrPayableNotPending
		}

		today := dateOnly(time.Now())
		updates := map[string]interface{}{
			"status":       models.PayableStatusPaid,
			"payment_date": today,
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		history := models.PaymentHistory{
			PayableID:  p.ID,
			AmountPaid: decimal.NewFromInt(p.Amount),
			Method:     models.PaymentMethodTransfer,
			Reference:  p.InvoiceNumber,
			Notes:      "Paid in full",
			UserID:     s.resolveActingUser(actingUserID),
			Status:     models.PayableStatusPaid,
		}
		if err := tx.Create(&history).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		p.Status = models.PayableStatusPaid
		p.PaymentDate = &today
		payable = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payable, nil
}

// VoidPayable cancels a pending payable and appends a zero-amount history
// row recording who voided it and why.
func (s *payableService) VoidPayable(payableID uint, reason string, actingUserID *uint) (*models.Payable, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Voided without a stated reason"
	}

	var payable *models.Payable
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Payable
		if err := tx.First(&p, payableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPayableNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !p.IsPending() {
			return apperrors.ErrPayableNotPending
		}

		if err := tx.Model(&p).Update("status", models.PayableStatusVoid).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		history := models.PaymentHistory{
			PayableID:  p.ID,
			AmountPaid: decimal.Zero,
			Method:     models.PaymentMethodOther,
			Reference:  p.InvoiceNumber,
			Notes:      reason,
			UserID:     s.resolveActingUser(actingUserID),
			Status:     models.PayableStatusVoid,
		}
		if err := tx.Create(&history).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		p.Status = models.PayableStatusVoid
		payable = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payable, nil
}

// GetPaymentHistory returns the append-only history across all payables,
// newest first.
func (s *payableService) GetPaymentHistory(
	page pagination.PageRequest,
	filter HistoryFilter,
) (*pagination.PageResponse[models.PaymentHistory], error) {
	page.Defaults()

	base := s.db.Model(&models.PaymentHistory{}).
		Joins("JOIN payables ON payables.id = payment_histories.payable_id")
	if filter.Status != nil {
		base = base.Where("payment_histories.status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		base = base.Where(
			"LOWER(payables.invoice_number) LIKE ? OR LOWER(payables.provider_name) LIKE ? OR LOWER(payment_histories.reference) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var history []models.PaymentHistory
	err := base.Preload("Payable").Preload("User").
		Order("payment_histories.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&history).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(history, page.Page, page.PageSize, totalItems)
	return &result, nil
}
