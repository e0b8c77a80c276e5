package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/shopspring/decimal"
)

// FeeCategoryModel is the persistence model for the FeeCategory entity.
type FeeCategoryModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (FeeCategoryModel) TableName() string {
	return "fee_categories"
}

// ToDomain converts the persistence model to a domain FeeCategory entity.
func (m *FeeCategoryModel) ToDomain() *fees.FeeCategory {
	return &fees.FeeCategory{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain FeeCategory entity.
func (m *FeeCategoryModel) FromDomain(c *fees.FeeCategory) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Description = c.Description
}

// FeeStructureModel is the persistence model for the FeeStructure aggregate root.
// The composite unique index enforces one price per (year, term, class, category).
type FeeStructureModel struct {
	AggregateModel
	FeeCategoryID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fee_structures_key,priority:4"`
	AcademicYearID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fee_structures_key,priority:1"`
	TermID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fee_structures_key,priority:2"`
	ClassID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fee_structures_key,priority:3"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsMandatory    bool            `gorm:"not null;default:true"`
	DueDate        *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (FeeStructureModel) TableName() string {
	return "fee_structures"
}

// ToDomain converts the persistence model to a domain FeeStructure entity.
func (m *FeeStructureModel) ToDomain() *fees.FeeStructure {
	fs := &fees.FeeStructure{
		FeeCategoryID:  m.FeeCategoryID,
		AcademicYearID: m.AcademicYearID,
		TermID:         m.TermID,
		ClassID:        m.ClassID,
		Amount:         m.Amount,
		IsMandatory:    m.IsMandatory,
		DueDate:        m.DueDate,
	}
	m.PopulateAggregateRoot(&fs.BaseAggregateRoot)
	return fs
}

// FromDomain populates the persistence model from a domain FeeStructure entity.
func (m *FeeStructureModel) FromDomain(fs *fees.FeeStructure) {
	m.FromDomainAggregateRoot(fs.BaseAggregateRoot)
	m.FeeCategoryID = fs.FeeCategoryID
	m.AcademicYearID = fs.AcademicYearID
	m.TermID = fs.TermID
	m.ClassID = fs.ClassID
	m.Amount = fs.Amount
	m.IsMandatory = fs.IsMandatory
	m.DueDate = fs.DueDate
}

// FeeStructureModelFromDomain creates a new persistence model from a domain FeeStructure.
func FeeStructureModelFromDomain(fs *fees.FeeStructure) *FeeStructureModel {
	m := &FeeStructureModel{}
	m.FromDomain(fs)
	return m
}

// StudentFeeModel is the persistence model for the StudentFee aggregate root.
// The unique index on (student_id, fee_structure_id) backs assignment
// idempotency.
type StudentFeeModel struct {
	AggregateModel
	StudentID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_student_fees_assignment,priority:1"`
	FeeStructureID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_student_fees_assignment,priority:2"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountReason string          `gorm:"type:varchar(500)"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoiceID      *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StudentFeeModel) TableName() string {
	return "student_fees"
}

// ToDomain converts the persistence model to a domain StudentFee entity.
func (m *StudentFeeModel) ToDomain() *fees.StudentFee {
	sf := &fees.StudentFee{
		StudentID:      m.StudentID,
		FeeStructureID: m.FeeStructureID,
		DiscountAmount: m.DiscountAmount,
		DiscountReason: m.DiscountReason,
		NetAmount:      m.NetAmount,
		InvoiceID:      m.InvoiceID,
	}
	m.PopulateAggregateRoot(&sf.BaseAggregateRoot)
	return sf
}

// FromDomain populates the persistence model from a domain StudentFee entity.
func (m *StudentFeeModel) FromDomain(sf *fees.StudentFee) {
	m.FromDomainAggregateRoot(sf.BaseAggregateRoot)
	m.StudentID = sf.StudentID
	m.FeeStructureID = sf.FeeStructureID
	m.DiscountAmount = sf.DiscountAmount
	m.DiscountReason = sf.DiscountReason
	m.NetAmount = sf.NetAmount
	m.InvoiceID = sf.InvoiceID
}

// StudentFeeModelFromDomain creates a new persistence model from a domain StudentFee.
func StudentFeeModelFromDomain(sf *fees.StudentFee) *StudentFeeModel {
	m := &StudentFeeModel{}
	m.FromDomain(sf)
	return m
}
