package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodBank        PaymentMethod = "BANK"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodMobileMoney:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusReversed  PaymentStatus = "REVERSED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusReversed
}

// Payment is a monetary application against one invoice's balance.
// Reversal flips the status in place: the row is retained for audit and the
// amount is never zeroed, which also prevents double-reversal drift.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentNumber  string          `json:"payment_number"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	StudentID      uuid.UUID       `json:"student_id"` // denormalized for reporting
	Amount         decimal.Decimal `json:"amount"`
	Method         PaymentMethod   `json:"method"`
	PaymentDate    time.Time       `json:"payment_date"`
	Notes          string          `json:"notes"`
	Status         PaymentStatus   `json:"status"`
	ReversedAt     *time.Time      `json:"reversed_at"`
	ReversalReason string          `json:"reversal_reason"`
}

// NewPayment creates a completed payment record
func NewPayment(
	paymentNumber string,
	invoiceID uuid.UUID,
	studentID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
	notes string,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Payment number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice ID cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Student ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Payment method %q is not valid", method))
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		InvoiceID:         invoiceID,
		StudentID:         studentID,
		Amount:            amount.Amount(),
		Method:            method,
		PaymentDate:       paymentDate,
		Notes:             notes,
		Status:            PaymentStatusCompleted,
	}, nil
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.Amount)
}

// IsCompleted returns true if the payment is still in effect
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// IsReversed returns true if the payment has been reversed
func (p *Payment) IsReversed() bool {
	return p.Status == PaymentStatusReversed
}

// Reverse marks the payment as reversed. Reversing an already-reversed
// payment is illegal; the amount stays untouched for the audit trail.
func (p *Payment) Reverse(reason string) error {
	if p.Status != PaymentStatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Payment %s is already %s", p.PaymentNumber, p.Status))
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeValidation, "Reversal reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusReversed
	p.ReversedAt = &now
	p.ReversalReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}
