package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	Status    *InvoiceStatus
	FromDate  *time.Time
	ToDate    *time.Time
	Overdue   bool
}

// InvoiceRepository persists invoices with their items
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	// FindOutstandingByStudent returns unpaid/partial/overdue invoices
	// ordered by invoice date ascending.
	FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock updates the invoice only if its stored version matches
	// the version the caller read, failing with CONCURRENCY_CONFLICT
	// otherwise. This serializes concurrent mutations of one invoice.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// CreateWithFees persists a new invoice with its items and attaches the
	// listed student fees in one transaction. Attachment is conditional on
	// each fee being unattached, so a fee can sit on at most one active
	// invoice even under concurrent generates; losing that race rolls back
	// the invoice and fails with CONFLICT. A lost invoice-number race fails
	// with CONCURRENCY_CONFLICT so the caller can retry with a fresh number.
	CreateWithFees(ctx context.Context, invoice *Invoice, feeIDs []uuid.UUID) error
	// CancelWithFeeRelease persists the cancelled invoice and clears the
	// invoice reference on its fees in one transaction, returning the number
	// of released fees. Either the cancellation and the release both land or
	// neither does.
	CancelWithFeeRelease(ctx context.Context, invoice *Invoice) (int64, error)
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	SumOutstandingByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error)
	// NextInvoiceNumber returns a unique invoice number (INV-YYYYMMDD-NNNNN).
	NextInvoiceNumber(ctx context.Context) (string, error)
}

// PaymentRepository persists payment records
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByNumber(ctx context.Context, paymentNumber string) (*Payment, error)
	// FindByInvoice returns an invoice's payments ordered by payment date
	// ascending.
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]Payment, error)
	// CreateWithInvoice persists a new payment and the mutated invoice in
	// one transaction, using the invoice's optimistic lock. Either both
	// writes land or neither does.
	CreateWithInvoice(ctx context.Context, payment *Payment, invoice *Invoice) error
	// SaveWithInvoice persists a mutated payment (reversal) and its invoice
	// in one transaction, using the invoice's optimistic lock.
	SaveWithInvoice(ctx context.Context, payment *Payment, invoice *Invoice) error
	// NextPaymentNumber returns a unique payment number (PMT-YYYYMMDD-NNNNN).
	NextPaymentNumber(ctx context.Context) (string, error)
}
