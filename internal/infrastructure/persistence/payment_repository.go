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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const paymentNumberPrefix = "PMT-"

// GormPaymentRepository implements billing.PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(db *Database) *GormPaymentRepository {
	return &GormPaymentRepository{db: db.DB()}
}

// FindByID retrieves a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves a payment by payment number
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, paymentNumber string) (*billing.Payment, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).Where("payment_number = ?", paymentNumber).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment by number: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByInvoice retrieves an invoice's payments, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var modelList []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find payments by invoice: %w", err)
	}

	payments := make([]billing.Payment, len(modelList))
	for i, model := range modelList {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// FindByStudent retrieves a student's payments
func (r *GormPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("student_id = ?", studentID)
	query = applyFilter(query, filter)

	var modelList []models.PaymentModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find payments by student: %w", err)
	}

	payments := make([]billing.Payment, len(modelList))
	for i, model := range modelList {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// CreateWithInvoice persists a new payment and the mutated invoice in one
// transaction. The invoice write goes through the optimistic lock, so a
// racing writer rolls back the payment insert as well.
func (r *GormPaymentRepository) CreateWithInvoice(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInvoiceWithLockTx(tx, invoice); err != nil {
			return err
		}

		model := models.PaymentModelFromDomain(payment)
		if err := tx.Create(model).Error; err != nil {
			// A duplicate payment number lost the daily-sequence race;
			// the caller's retry loop regenerates it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
}

// SaveWithInvoice persists a mutated payment and its invoice in one
// transaction, using the invoice's optimistic lock.
func (r *GormPaymentRepository) SaveWithInvoice(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInvoiceWithLockTx(tx, invoice); err != nil {
			return err
		}

		model := models.PaymentModelFromDomain(payment)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(model).Error
		if err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return nil
	})
}

// NextPaymentNumber generates the next payment number for today in the form
// PMT-YYYYMMDD-NNNNN.
func (r *GormPaymentRepository) NextPaymentNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s%s-", paymentNumberPrefix, time.Now().Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("payment_number").
		Where("payment_number LIKE ?", prefix+"%").
		Order("payment_number DESC").
		Limit(1).
		Pluck("payment_number", &lastNumber).Error
	if err != nil {
		return "", fmt.Errorf("failed to query last payment number: %w", err)
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

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
