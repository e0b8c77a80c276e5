package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	StudentID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceDate   time.Time             `gorm:"not null"`
	DueDate       time.Time             `gorm:"not null;index"`
	Items         []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	Notes         string                `gorm:"type:text"`
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is a line item row owned by its invoice.
type InvoiceItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentFeeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	items := make([]billing.InvoiceItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = billing.InvoiceItem{
			ID:           item.ID,
			StudentFeeID: item.StudentFeeID,
			Amount:       item.Amount,
		}
	}

	inv := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		StudentID:     m.StudentID,
		InvoiceDate:   m.InvoiceDate,
		DueDate:       m.DueDate,
		Items:         items,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		BalanceAmount: m.BalanceAmount,
		Status:        m.Status,
		Notes:         m.Notes,
		PaidAt:        m.PaidAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	// The stored status predates this read; an open invoice whose due date
	// has since passed must report OVERDUE.
	inv.RefreshStatus()
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.StudentID = inv.StudentID
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.BalanceAmount = inv.BalanceAmount
	m.Status = inv.Status
	m.Notes = inv.Notes
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			ID:           item.ID,
			InvoiceID:    inv.ID,
			StudentFeeID: item.StudentFeeID,
			Amount:       item.Amount,
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	AggregateModel
	PaymentNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	StudentID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method         billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentDate    time.Time             `gorm:"not null;index"`
	Notes          string                `gorm:"type:text"`
	Status         billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'COMPLETED';index"`
	ReversedAt     *time.Time
	ReversalReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		PaymentNumber:  m.PaymentNumber,
		InvoiceID:      m.InvoiceID,
		StudentID:      m.StudentID,
		Amount:         m.Amount,
		Method:         m.Method,
		PaymentDate:    m.PaymentDate,
		Notes:          m.Notes,
		Status:         m.Status,
		ReversedAt:     m.ReversedAt,
		ReversalReason: m.ReversalReason,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.InvoiceID = p.InvoiceID
	m.StudentID = p.StudentID
	m.Amount = p.Amount
	m.Method = p.Method
	m.PaymentDate = p.PaymentDate
	m.Notes = p.Notes
	m.Status = p.Status
	m.ReversedAt = p.ReversedAt
	m.ReversalReason = p.ReversalReason
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
