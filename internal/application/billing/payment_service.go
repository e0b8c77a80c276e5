package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxLockRetries bounds reload attempts when a concurrent writer bumps the
// invoice version between our read and write.
const maxLockRetries = 3

// OutstandingSummary aggregates a student's open debt
type OutstandingSummary struct {
	StudentID    uuid.UUID       `json:"student_id"`
	TotalDue     decimal.Decimal `json:"total_due"`
	InvoiceCount int             `json:"invoice_count"`
	ComputedAt   time.Time       `json:"computed_at"`
}

// OutstandingCache caches per-student outstanding summaries. A nil-safe
// no-op implementation is acceptable; cache failures must never fail the
// business operation.
type OutstandingCache interface {
	Get(ctx context.Context, studentID uuid.UUID) (*OutstandingSummary, error)
	Set(ctx context.Context, summary *OutstandingSummary) error
	Invalidate(ctx context.Context, studentID uuid.UUID) error
}

// PaymentService records and reverses payments against invoices.
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	invoiceRepo billing.InvoiceRepository
	studentRepo school.StudentRepository
	cache       OutstandingCache
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	invoiceRepo billing.InvoiceRepository,
	studentRepo school.StudentRepository,
	cache OutstandingCache,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		studentRepo: studentRepo,
		cache:       cache,
		logger:      logger,
	}
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	InvoiceID   uuid.UUID
	Amount      valueobject.Money
	Method      billing.PaymentMethod
	PaymentDate time.Time
	Notes       string
}

// RecordPaymentResult is the outcome of recording a payment
type RecordPaymentResult struct {
	Payment *billing.Payment `json:"payment"`
	Invoice *billing.Invoice `json:"invoice"`
}

// RecordPayment applies a payment to an invoice and persists both in one
// transaction. Overpayment is rejected with OVERPAYMENT. Concurrent
// payments against the same invoice are serialized by the invoice's
// optimistic lock; on a version conflict the invoice is reloaded and the
// payment retried against fresh state, so two racing payments can never
// drive the paid amount past the total.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, string(req.Method),
	)

	var result *RecordPaymentResult
	var lastErr error
	for attempt := 0; attempt <= maxLockRetries; attempt++ {
		invoice, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice == nil {
			err := shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
			telemetry.RecordError(span, err)
			return nil, err
		}

		if err := invoice.ApplyPayment(req.Amount); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		paymentNumber, err := s.paymentRepo.NextPaymentNumber(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to generate payment number: %w", err)
		}

		payment, err := billing.NewPayment(
			paymentNumber, invoice.ID, invoice.StudentID,
			req.Amount, req.Method, req.PaymentDate, req.Notes,
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		err = s.paymentRepo.CreateWithInvoice(ctx, payment, invoice)
		if err == nil {
			result = &RecordPaymentResult{Payment: payment, Invoice: invoice}
			break
		}
		if !shared.IsCode(err, shared.CodeConcurrencyConflict) {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save payment: %w", err)
		}

		lastErr = err
		s.logger.Warn("Concurrent invoice update, retrying payment",
			zap.String("invoice_id", req.InvoiceID.String()),
			zap.Int("attempt", attempt+1),
		)
		telemetry.AddEvent(span, "lock_conflict_retry", "attempt", attempt+1)
	}

	if result == nil {
		telemetry.RecordError(span, lastErr)
		return nil, lastErr
	}

	s.invalidateCache(ctx, result.Invoice.StudentID)

	s.logger.Info("Payment recorded",
		zap.String("payment_number", result.Payment.PaymentNumber),
		zap.String("invoice_number", result.Invoice.InvoiceNumber),
		zap.String("amount", result.Payment.Amount.String()),
		zap.String("invoice_status", result.Invoice.Status.String()),
	)
	telemetry.AddEvent(span, "payment_recorded",
		telemetry.SpanAttrPaymentNumber, result.Payment.PaymentNumber,
		telemetry.SpanAttrInvoiceStatus, result.Invoice.Status.String(),
	)

	return result, nil
}

// ReversePayment undoes a completed payment, restoring the invoice balance
// and status as if the payment had not occurred. The payment record is kept
// with REVERSED status for the audit trail. A reversal that would corrupt
// the invoice's paid amount fails with INVARIANT_VIOLATION and is logged at
// error level.
func (s *PaymentService) ReversePayment(ctx context.Context, paymentID uuid.UUID, reason string) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reverse")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		err := shared.NewDomainError(shared.CodeNotFound, "Payment not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *RecordPaymentResult
	var lastErr error
	for attempt := 0; attempt <= maxLockRetries; attempt++ {
		invoice, err := s.invoiceRepo.FindByID(ctx, payment.InvoiceID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice == nil {
			err := shared.NewDomainError(shared.CodeInvariantViolation,
				fmt.Sprintf("Payment %s references missing invoice %s", payment.PaymentNumber, payment.InvoiceID))
			s.logger.Error("Payment references missing invoice",
				zap.String("payment_number", payment.PaymentNumber),
				zap.String("invoice_id", payment.InvoiceID.String()),
			)
			telemetry.RecordError(span, err)
			return nil, err
		}

		if err := payment.Reverse(reason); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		if err := invoice.ReverseAmount(payment.GetAmountMoney()); err != nil {
			if shared.IsCode(err, shared.CodeInvariantViolation) {
				s.logger.Error("Payment reversal would corrupt invoice state",
					zap.String("payment_number", payment.PaymentNumber),
					zap.String("invoice_number", invoice.InvoiceNumber),
					zap.Error(err),
				)
			}
			telemetry.RecordError(span, err)
			return nil, err
		}

		err = s.paymentRepo.SaveWithInvoice(ctx, payment, invoice)
		if err == nil {
			result = &RecordPaymentResult{Payment: payment, Invoice: invoice}
			break
		}
		if !shared.IsCode(err, shared.CodeConcurrencyConflict) {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save reversal: %w", err)
		}

		lastErr = err
		// Reload both sides before retrying; the in-memory mutations above
		// are stale once the lock fails.
		payment, err = s.paymentRepo.FindByID(ctx, paymentID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to reload payment: %w", err)
		}
		if payment == nil {
			err := shared.NewDomainError(shared.CodeNotFound, "Payment not found")
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.AddEvent(span, "lock_conflict_retry", "attempt", attempt+1)
	}

	if result == nil {
		telemetry.RecordError(span, lastErr)
		return nil, lastErr
	}

	s.invalidateCache(ctx, result.Invoice.StudentID)

	s.logger.Info("Payment reversed",
		zap.String("payment_number", result.Payment.PaymentNumber),
		zap.String("invoice_number", result.Invoice.InvoiceNumber),
		zap.String("reason", reason),
		zap.String("invoice_status", result.Invoice.Status.String()),
	)

	return result, nil
}

// GetPayment returns one payment record
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Payment not found")
	}
	return payment, nil
}

// ListPaymentsByStudent returns a student's payment history
func (s *PaymentService) ListPaymentsByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Student not found")
	}
	return s.paymentRepo.FindByStudent(ctx, studentID, filter)
}

// GetOutstandingSummary returns a student's total open debt. The summary is
// served from cache when fresh; payments and reversals invalidate it.
func (s *PaymentService) GetOutstandingSummary(ctx context.Context, studentID uuid.UUID) (*OutstandingSummary, error) {
	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Student not found")
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, studentID); err != nil {
			s.logger.Warn("Outstanding cache read failed",
				zap.String("student_id", studentID.String()), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	total, err := s.invoiceRepo.SumOutstandingByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding invoices: %w", err)
	}
	open, err := s.invoiceRepo.FindOutstandingByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding invoices: %w", err)
	}

	summary := &OutstandingSummary{
		StudentID:    studentID,
		TotalDue:     total,
		InvoiceCount: len(open),
		ComputedAt:   time.Now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.Warn("Outstanding cache write failed",
				zap.String("student_id", studentID.String()), zap.Error(err))
		}
	}

	return summary, nil
}

func (s *PaymentService) invalidateCache(ctx context.Context, studentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, studentID); err != nil {
		s.logger.Warn("Outstanding cache invalidation failed",
			zap.String("student_id", studentID.String()), zap.Error(err))
	}
}
