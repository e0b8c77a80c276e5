package fees

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FeeStructure is a pricing rule keyed by (academic year, term, class,
// category). It is a template, never a per-student record.
type FeeStructure struct {
	shared.BaseAggregateRoot
	FeeCategoryID  uuid.UUID       `json:"fee_category_id"`
	AcademicYearID uuid.UUID       `json:"academic_year_id"`
	TermID         uuid.UUID       `json:"term_id"`
	ClassID        uuid.UUID       `json:"class_id"`
	Amount         decimal.Decimal `json:"amount"`
	IsMandatory    bool            `json:"is_mandatory"`
	DueDate        *time.Time      `json:"due_date"`
}

// NewFeeStructure creates a new fee structure
func NewFeeStructure(
	feeCategoryID uuid.UUID,
	academicYearID uuid.UUID,
	termID uuid.UUID,
	classID uuid.UUID,
	amount valueobject.Money,
	isMandatory bool,
	dueDate *time.Time,
) (*FeeStructure, error) {
	if feeCategoryID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Fee category ID cannot be empty")
	}
	if academicYearID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Academic year ID cannot be empty")
	}
	if termID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Term ID cannot be empty")
	}
	if classID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Class ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Fee amount must be positive")
	}

	return &FeeStructure{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FeeCategoryID:     feeCategoryID,
		AcademicYearID:    academicYearID,
		TermID:            termID,
		ClassID:           classID,
		Amount:            amount.Amount(),
		IsMandatory:       isMandatory,
		DueDate:           dueDate,
	}, nil
}

// GetAmountMoney returns the structure amount as Money
func (fs *FeeStructure) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(fs.Amount)
}

// UpdateAmount changes the priced amount. Existing student fees keep their
// snapshot; only future assignments see the new price.
func (fs *FeeStructure) UpdateAmount(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Fee amount must be positive")
	}
	fs.Amount = amount.Amount()
	fs.UpdatedAt = time.Now()
	fs.IncrementVersion()
	return nil
}

// SetDueDate updates the due date
func (fs *FeeStructure) SetDueDate(dueDate *time.Time) {
	fs.DueDate = dueDate
	fs.UpdatedAt = time.Now()
	fs.IncrementVersion()
}
