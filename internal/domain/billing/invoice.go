package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"    // No payment applied yet
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"   // 0 < paid < total
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Balance cleared
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"   // Balance > 0 and past due date
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Voided; items released for re-invoicing
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further payments are accepted in this status
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// InvoiceItem is a line item within the Invoice aggregate. Amount is a
// snapshot of the student fee's net amount at invoice-creation time, not a
// live reference; later fee amendments never change an issued invoice.
type InvoiceItem struct {
	ID           uuid.UUID       `json:"id"`
	StudentFeeID uuid.UUID       `json:"student_fee_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// Invoice aggregates a student's fee obligations into a billing document
// carrying the authoritative balance.
//
// Invariants, enforced by every mutation:
//   - BalanceAmount == TotalAmount - PaidAmount
//   - 0 <= PaidAmount <= TotalAmount
//   - Status is derived from (balance, due date, cancelled flag), never
//     mutated independently.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Items         []InvoiceItem   `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        InvoiceStatus   `json:"status"`
	Notes         string          `json:"notes"`
	PaidAt        *time.Time      `json:"paid_at"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	CancelReason  string          `json:"cancel_reason"`
}

// InvoiceLine is the input for one invoice item
type InvoiceLine struct {
	StudentFeeID uuid.UUID
	Amount       valueobject.Money
}

// NewInvoice creates a new invoice from snapshotted fee amounts.
// TotalAmount is the sum of line amounts; the invoice starts with zero paid.
func NewInvoice(
	invoiceNumber string,
	studentID uuid.UUID,
	invoiceDate time.Time,
	dueDate time.Time,
	lines []InvoiceLine,
	notes string,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice number cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Student ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice must contain at least one item")
	}

	items := make([]InvoiceItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.StudentFeeID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "Invoice item must reference a student fee")
		}
		if line.Amount.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeValidation, "Invoice item amount cannot be negative")
		}
		items = append(items, InvoiceItem{
			ID:           uuid.New(),
			StudentFeeID: line.StudentFeeID,
			Amount:       line.Amount.Amount(),
		})
		total = total.Add(line.Amount.Amount())
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice total must be positive")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		StudentID:         studentID,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		Items:             items,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		BalanceAmount:     total,
		Notes:             notes,
	}
	inv.Status = inv.deriveStatus()

	return inv, nil
}

// deriveStatus computes the status from the current balance, due date and
// cancelled flag. Balance drift cannot occur because the stored status is
// never trusted when amounts change.
func (inv *Invoice) deriveStatus() InvoiceStatus {
	if inv.CancelledAt != nil {
		return InvoiceStatusCancelled
	}
	if inv.BalanceAmount.IsZero() {
		return InvoiceStatusPaid
	}
	if time.Now().After(inv.DueDate) {
		return InvoiceStatusOverdue
	}
	if inv.PaidAmount.IsPositive() {
		return InvoiceStatusPartial
	}
	return InvoiceStatusUnpaid
}

// RefreshStatus re-derives the status from the current clock without
// touching amounts or the version. Read paths call this so an invoice whose
// due date passed since the last write reports OVERDUE instead of the stored
// UNPAID or PARTIAL.
func (inv *Invoice) RefreshStatus() {
	inv.Status = inv.deriveStatus()
}

// recomputeAmounts re-derives balance and status from the paid amount.
// Balance is always recomputed from the (total, paid) pair rather than
// decremented independently.
func (inv *Invoice) recomputeAmounts() {
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
	inv.Status = inv.deriveStatus()
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// ApplyPayment applies a payment amount against the invoice balance.
// Overpayment is rejected, never clamped: an amount greater than the
// outstanding balance fails with OVERPAYMENT. An amount equal to the
// balance closes the invoice.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if !inv.Status.CanApplyPayment() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.BalanceAmount) {
		return shared.NewDomainError(shared.CodeOverpayment,
			fmt.Sprintf("Payment amount %s exceeds outstanding balance %s",
				amount, valueobject.NewMoney(inv.BalanceAmount)))
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.recomputeAmounts()

	if inv.Status == InvoiceStatusPaid {
		now := time.Now()
		inv.PaidAt = &now
	}

	return nil
}

// ReverseAmount undoes a previously applied payment amount, restoring the
// balance and status as if the payment had not occurred. A result that
// would drive the paid amount negative indicates corrupted state and fails
// with INVARIANT_VIOLATION; it is never silently corrected.
func (inv *Invoice) ReverseAmount(amount valueobject.Money) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot reverse a payment on a cancelled invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Reversal amount must be positive")
	}

	newPaid := inv.PaidAmount.Sub(amount.Amount())
	if newPaid.IsNegative() {
		return shared.NewDomainError(shared.CodeInvariantViolation,
			fmt.Sprintf("Reversing %s would drive paid amount %s negative on invoice %s",
				amount, valueobject.NewMoney(inv.PaidAmount), inv.InvoiceNumber))
	}

	inv.PaidAmount = newPaid
	inv.PaidAt = nil
	inv.recomputeAmounts()

	return nil
}

// Cancel voids the invoice. Cancellation has no balance side effects, so it
// is only legal before any payment has been applied; reversing payments
// first brings a partially paid invoice back to a cancellable state.
// The caller releases the underlying student fees for re-invoicing.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Cannot cancel an invoice with recorded payments; reverse them first")
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeValidation, "Cancel reason is required")
	}

	now := time.Now()
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.Status = inv.deriveStatus()
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// GetTotalAmountMoney returns total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoney(inv.TotalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoney(inv.PaidAmount)
}

// GetBalanceAmountMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceAmountMoney() valueobject.Money {
	return valueobject.NewMoney(inv.BalanceAmount)
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsOverdue returns true if the invoice is past due with an open balance
func (inv *Invoice) IsOverdue() bool {
	return inv.Status == InvoiceStatusOverdue
}

// StudentFeeIDs returns the ids of the obligations this invoice covers
func (inv *Invoice) StudentFeeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(inv.Items))
	for i, item := range inv.Items {
		ids[i] = item.StudentFeeID
	}
	return ids
}

// CheckIntegrity validates the aggregate's arithmetic invariants. A failure
// indicates corrupted state and must be reported, never patched in place.
func (inv *Invoice) CheckIntegrity() error {
	itemSum := decimal.Zero
	for _, item := range inv.Items {
		itemSum = itemSum.Add(item.Amount)
	}
	if !itemSum.Equal(inv.TotalAmount) {
		return shared.NewDomainError(shared.CodeInvariantViolation,
			fmt.Sprintf("Invoice %s item sum %s does not match total %s",
				inv.InvoiceNumber, itemSum, inv.TotalAmount))
	}
	if !inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)) {
		return shared.NewDomainError(shared.CodeInvariantViolation,
			fmt.Sprintf("Invoice %s balance %s does not equal total %s minus paid %s",
				inv.InvoiceNumber, inv.BalanceAmount, inv.TotalAmount, inv.PaidAmount))
	}
	if inv.PaidAmount.IsNegative() || inv.PaidAmount.GreaterThan(inv.TotalAmount) {
		return shared.NewDomainError(shared.CodeInvariantViolation,
			fmt.Sprintf("Invoice %s paid amount %s outside [0, %s]",
				inv.InvoiceNumber, inv.PaidAmount, inv.TotalAmount))
	}
	return nil
}
