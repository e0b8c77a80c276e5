package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceNumberPrefix = "INV-"

var openInvoiceStatuses = []billing.InvoiceStatus{
	billing.InvoiceStatusUnpaid,
	billing.InvoiceStatusPartial,
	billing.InvoiceStatusOverdue,
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GORM invoice repository
func NewGormInvoiceRepository(db *Database) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db.DB()}
}

// FindByID retrieves an invoice with its items by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves an invoice with its items by invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).Preload("Items").Where("invoice_number = ?", invoiceNumber).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice by number: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll retrieves invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	query := r.applyInvoiceFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Preload("Items"), filter)
	query = applyFilter(query, filter.Filter)

	var modelList []models.InvoiceModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find invoices: %w", err)
	}

	invoices := make([]billing.Invoice, len(modelList))
	for i, model := range modelList {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByStudent retrieves a student's invoices
func (r *GormInvoiceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Preload("Items").
		Where("student_id = ?", studentID)
	query = applyFilter(query, filter)

	var modelList []models.InvoiceModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find invoices by student: %w", err)
	}

	invoices := make([]billing.Invoice, len(modelList))
	for i, model := range modelList {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindOutstandingByStudent retrieves a student's open invoices, oldest first
func (r *GormInvoiceRepository) FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.Invoice, error) {
	var modelList []models.InvoiceModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("student_id = ? AND status IN ?", studentID, openInvoiceStatuses).
		Order("invoice_date ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find outstanding invoices: %w", err)
	}

	invoices := make([]billing.Invoice, len(modelList))
	for i, model := range modelList {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save creates a new invoice with its items, or updates an existing one.
// Items are snapshots taken at creation and are never modified afterwards.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveInvoiceTx(tx, invoice)
	})
}

// SaveWithLock updates the invoice only if its stored version matches the
// version the caller read. A zero-row update means another writer got there
// first and the caller must reload and retry.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return saveInvoiceWithLockTx(r.db.WithContext(ctx), invoice)
}

// CreateWithFees persists a new invoice with its items and attaches the
// listed student fees in one transaction. The attach only touches fees whose
// invoice_id is still NULL; a shortfall in affected rows means another
// invoice claimed a fee first, and the whole transaction rolls back. A
// duplicate invoice number lost the daily-sequence race and is surfaced as
// CONCURRENCY_CONFLICT so the caller regenerates the number and retries.
func (r *GormInvoiceRepository) CreateWithFees(ctx context.Context, invoice *billing.Invoice, feeIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInvoiceTx(tx, invoice); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrConcurrencyConflict
			}
			return err
		}

		result := tx.Model(&models.StudentFeeModel{}).
			Where("id IN ? AND invoice_id IS NULL", feeIDs).
			Updates(map[string]any{
				"invoice_id": invoice.ID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to attach fees to invoice: %w", result.Error)
		}
		if result.RowsAffected != int64(len(feeIDs)) {
			return shared.NewDomainError(shared.CodeConflict,
				"One or more student fees are already attached to an invoice")
		}
		return nil
	})
}

// CancelWithFeeRelease persists the cancelled invoice through its optimistic
// lock and clears the invoice reference on its fees in one transaction. The
// released count lets callers report how many obligations became invoiceable
// again.
func (r *GormInvoiceRepository) CancelWithFeeRelease(ctx context.Context, invoice *billing.Invoice) (int64, error) {
	var released int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInvoiceWithLockTx(tx, invoice); err != nil {
			return err
		}

		result := tx.Model(&models.StudentFeeModel{}).
			Where("invoice_id = ?", invoice.ID).
			Updates(map[string]any{
				"invoice_id": nil,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to release student fees: %w", result.Error)
		}
		released = result.RowsAffected
		return nil
	})
	return released, err
}

// Count returns the number of invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	query := r.applyInvoiceFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// SumOutstandingByStudent returns the total open balance across a student's
// invoices.
func (r *GormInvoiceRepository) SumOutstandingByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(balance_amount), 0) as total").
		Where("student_id = ? AND status IN ?", studentID, openInvoiceStatuses).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outstanding balance: %w", err)
	}
	return result.Total, nil
}

// NextInvoiceNumber generates the next invoice number for today in the form
// INV-YYYYMMDD-NNNNN.
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s%s-", invoiceNumberPrefix, time.Now().Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &lastNumber).Error
	if err != nil {
		return "", fmt.Errorf("failed to query last invoice number: %w", err)
	}

	nextNum := 1
	if lastNumber != "" {
		var seq int
		if _, err := fmt.Sscanf(strings.TrimPrefix(lastNumber, prefix), "%d", &seq); err == nil {
			nextNum = seq + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", *filter.ToDate)
	}
	if filter.Overdue {
		query = query.Where("due_date < ? AND balance_amount > 0 AND cancelled_at IS NULL", time.Now())
	}
	return query
}

// saveInvoiceTx upserts the invoice row and inserts any items not yet stored.
func saveInvoiceTx(tx *gorm.DB, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)

	err := tx.Omit("Items").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	if len(model.Items) > 0 {
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&model.Items).Error
		if err != nil {
			return fmt.Errorf("failed to save invoice items: %w", err)
		}
	}
	return nil
}

// saveInvoiceWithLockTx performs the optimistic-lock update of the invoice
// row. Column values are written explicitly so cleared fields (a nil paid_at
// after a reversal) reach the database.
func saveInvoiceWithLockTx(tx *gorm.DB, invoice *billing.Invoice) error {
	updates := map[string]any{
		"paid_amount":    invoice.PaidAmount,
		"balance_amount": invoice.BalanceAmount,
		"status":         invoice.Status,
		"due_date":       invoice.DueDate,
		"notes":          invoice.Notes,
		"paid_at":        invoice.PaidAt,
		"cancelled_at":   invoice.CancelledAt,
		"cancel_reason":  invoice.CancelReason,
		"updated_at":     invoice.UpdatedAt,
		"version":        invoice.Version,
	}

	result := tx.Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
