package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService generates, cancels and queries invoices.
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	paymentRepo    billing.PaymentRepository
	studentFeeRepo fees.StudentFeeRepository
	studentRepo    school.StudentRepository
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	studentFeeRepo fees.StudentFeeRepository,
	studentRepo school.StudentRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		studentFeeRepo: studentFeeRepo,
		studentRepo:    studentRepo,
		logger:         logger,
	}
}

// GenerateInvoiceRequest represents a request to generate one invoice
type GenerateInvoiceRequest struct {
	StudentID     uuid.UUID
	StudentFeeIDs []uuid.UUID
	DueDate       time.Time
	Notes         string
}

// InvoiceDetail is an invoice with its payment history
type InvoiceDetail struct {
	Invoice  *billing.Invoice  `json:"invoice"`
	Payments []billing.Payment `json:"payments"`
}

// GenerateInvoice aggregates the listed fee obligations into one invoice.
// Fee amounts are snapshotted into invoice items at this moment. Any fee
// that is unknown, belongs to another student, or already sits on an active
// invoice aborts the whole request; no partial invoice is ever created.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "generate")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, req.StudentID.String(),
		"fee_count", len(req.StudentFeeIDs),
	)

	if len(req.StudentFeeIDs) == 0 {
		err := shared.NewDomainError(shared.CodeValidation, "Fee list cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}

	student, err := s.studentRepo.FindByID(ctx, req.StudentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		err := shared.NewDomainError(shared.CodeNotFound, "Student not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	feeList, err := s.studentFeeRepo.FindByIDs(ctx, req.StudentFeeIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load student fees: %w", err)
	}
	byID := make(map[uuid.UUID]*fees.StudentFee, len(feeList))
	for i := range feeList {
		byID[feeList[i].ID] = &feeList[i]
	}

	lines := make([]billing.InvoiceLine, 0, len(req.StudentFeeIDs))
	for _, feeID := range req.StudentFeeIDs {
		fee, ok := byID[feeID]
		if !ok {
			err := shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Student fee %s not found", feeID))
			telemetry.RecordError(span, err)
			return nil, err
		}
		if fee.StudentID != req.StudentID {
			err := shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("Student fee %s belongs to a different student", feeID))
			telemetry.RecordError(span, err)
			return nil, err
		}
		if fee.IsInvoiced() {
			err := shared.NewDomainError(shared.CodeConflict,
				fmt.Sprintf("Student fee %s is already on invoice %s", feeID, *fee.InvoiceID))
			telemetry.RecordError(span, err)
			return nil, err
		}
		lines = append(lines, billing.InvoiceLine{
			StudentFeeID: fee.ID,
			Amount:       fee.GetNetAmountMoney(),
		})
	}

	// The invoice row, its items and the fee attachments commit in one
	// transaction. A lost invoice-number race retries with a fresh number;
	// a fee claimed by a concurrent generate aborts with CONFLICT.
	var invoice *billing.Invoice
	var lastErr error
	for attempt := 0; attempt <= maxLockRetries; attempt++ {
		invoiceNumber, err := s.invoiceRepo.NextInvoiceNumber(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to generate invoice number: %w", err)
		}

		candidate, err := billing.NewInvoice(invoiceNumber, req.StudentID, time.Now(), req.DueDate, lines, req.Notes)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		err = s.invoiceRepo.CreateWithFees(ctx, candidate, candidate.StudentFeeIDs())
		if err == nil {
			invoice = candidate
			break
		}
		if !shared.IsCode(err, shared.CodeConcurrencyConflict) {
			telemetry.RecordError(span, err)
			return nil, err
		}

		lastErr = err
		s.logger.Warn("Invoice number collision, retrying",
			zap.String("invoice_number", invoiceNumber),
			zap.Int("attempt", attempt+1),
		)
		telemetry.AddEvent(span, "number_collision_retry", "attempt", attempt+1)
	}
	if invoice == nil {
		telemetry.RecordError(span, lastErr)
		return nil, lastErr
	}

	s.logger.Info("Invoice generated",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("student_id", req.StudentID.String()),
		zap.String("total_amount", invoice.TotalAmount.String()),
		zap.Int("items", len(invoice.Items)),
	)
	telemetry.AddEvent(span, "invoice_generated",
		telemetry.SpanAttrInvoiceNumber, invoice.InvoiceNumber,
		telemetry.SpanAttrAmount, invoice.TotalAmount.String(),
	)

	return invoice, nil
}

// CancelInvoice voids an invoice and releases its fee obligations for
// re-invoicing. Invoices with recorded payments cannot be cancelled until
// those payments are reversed.
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "cancel")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, invoiceID.String())

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		err := shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := invoice.Cancel(reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	released, err := s.invoiceRepo.CancelWithFeeRelease(ctx, invoice)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to cancel invoice: %w", err)
	}

	s.logger.Info("Invoice cancelled",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("reason", reason),
		zap.Int64("released_fees", released),
	)

	return invoice, nil
}

// GetInvoice returns an invoice with its payments ordered by payment date
// ascending.
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	return &InvoiceDetail{Invoice: invoice, Payments: payments}, nil
}

// GetInvoiceByNumber returns an invoice looked up by its number
func (s *InvoiceService) GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*InvoiceDetail, error) {
	invoice, err := s.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return &InvoiceDetail{Invoice: invoice, Payments: payments}, nil
}

// ListInvoices returns invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (shared.Paginated[billing.Invoice], error) {
	items, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[billing.Invoice]{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[billing.Invoice]{}, fmt.Errorf("failed to count invoices: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListOutstandingByStudent returns a student's open invoices ordered by
// invoice date ascending, oldest debt first.
func (s *InvoiceService) ListOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.Invoice, error) {
	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Student not found")
	}
	return s.invoiceRepo.FindOutstandingByStudent(ctx, studentID)
}

// VerifyInvoiceIntegrity recomputes the invoice's arithmetic invariants
// against its recorded payments. A mismatch is logged at error level and
// returned as INVARIANT_VIOLATION, never auto-corrected.
func (s *InvoiceService) VerifyInvoiceIntegrity(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
	}

	if err := invoice.CheckIntegrity(); err != nil {
		s.logger.Error("Invoice integrity violation",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
		return err
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	completed := valueobject.Zero()
	for _, p := range payments {
		if p.IsCompleted() {
			completed = completed.Add(p.GetAmountMoney())
		}
	}
	if !completed.Equals(invoice.GetPaidAmountMoney()) {
		err := shared.NewDomainError(shared.CodeInvariantViolation,
			fmt.Sprintf("Invoice %s paid amount %s does not match completed payments sum %s",
				invoice.InvoiceNumber, invoice.GetPaidAmountMoney(), completed))
		s.logger.Error("Invoice integrity violation",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
		return err
	}

	return nil
}
