package fees

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// StudentFee is a single student's obligation derived from a fee structure.
// Exactly one exists per (student, structure) pair; the storage layer backs
// this with a unique index so concurrent assignment re-runs stay idempotent.
type StudentFee struct {
	shared.BaseAggregateRoot
	StudentID      uuid.UUID       `json:"student_id"`
	FeeStructureID uuid.UUID       `json:"fee_structure_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountReason string          `json:"discount_reason"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	InvoiceID      *uuid.UUID      `json:"invoice_id"` // set while attached to an active invoice
}

// NewStudentFee creates a student fee obligation from a structure.
// NetAmount is computed as structure amount minus discount and snapshotted;
// later structure price changes do not touch existing obligations.
func NewStudentFee(
	studentID uuid.UUID,
	structure *FeeStructure,
	discount valueobject.Money,
	discountReason string,
) (*StudentFee, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Student ID cannot be empty")
	}
	if structure == nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Fee structure cannot be nil")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Discount amount cannot be negative")
	}
	if discount.GreaterThan(structure.GetAmountMoney()) {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Discount %s exceeds structure amount %s", discount, structure.GetAmountMoney()))
	}

	return &StudentFee{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		FeeStructureID:    structure.ID,
		DiscountAmount:    discount.Amount(),
		DiscountReason:    discountReason,
		NetAmount:         structure.Amount.Sub(discount.Amount()),
	}, nil
}

// GetNetAmountMoney returns the net amount as Money
func (sf *StudentFee) GetNetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(sf.NetAmount)
}

// IsInvoiced returns true while the fee is attached to an active invoice
func (sf *StudentFee) IsInvoiced() bool {
	return sf.InvoiceID != nil
}

// AttachToInvoice marks the fee as belonging to an invoice.
// A fee may be invoiced at most once while that invoice is active.
func (sf *StudentFee) AttachToInvoice(invoiceID uuid.UUID) error {
	if sf.InvoiceID != nil {
		return shared.NewDomainError(shared.CodeConflict,
			fmt.Sprintf("Student fee %s is already on invoice %s", sf.ID, *sf.InvoiceID))
	}
	sf.InvoiceID = &invoiceID
	sf.UpdatedAt = time.Now()
	sf.IncrementVersion()
	return nil
}

// Release detaches the fee from a cancelled invoice, making it eligible
// for re-invoicing.
func (sf *StudentFee) Release() {
	sf.InvoiceID = nil
	sf.UpdatedAt = time.Now()
	sf.IncrementVersion()
}
