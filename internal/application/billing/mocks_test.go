package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CreateWithFees(ctx context.Context, invoice *billing.Invoice, feeIDs []uuid.UUID) error {
	args := m.Called(ctx, invoice, feeIDs)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CancelWithFeeRelease(ctx context.Context, invoice *billing.Invoice) (int64, error) {
	args := m.Called(ctx, invoice)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SumOutstandingByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByNumber(ctx context.Context, paymentNumber string) (*billing.Payment, error) {
	args := m.Called(ctx, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CreateWithInvoice(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	args := m.Called(ctx, payment, invoice)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithInvoice(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	args := m.Called(ctx, payment, invoice)
	return args.Error(0)
}

func (m *MockPaymentRepository) NextPaymentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]school.Student, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]school.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByClass(ctx context.Context, classID uuid.UUID, filter shared.Filter) ([]school.Student, error) {
	args := m.Called(ctx, classID, filter)
	return args.Get(0).([]school.Student), args.Error(1)
}

func (m *MockStudentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockStudentFeeRepository struct {
	mock.Mock
}

func (m *MockStudentFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.StudentFee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]fees.StudentFee, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]fees.StudentFee, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindByStructure(ctx context.Context, feeStructureID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	args := m.Called(ctx, feeStructureID, filter)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) CreateIfAbsent(ctx context.Context, fee *fees.StudentFee) (bool, error) {
	args := m.Called(ctx, fee)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudentFeeRepository) Save(ctx context.Context, fee *fees.StudentFee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockStudentFeeRepository) SaveBatch(ctx context.Context, feeList []*fees.StudentFee) error {
	args := m.Called(ctx, feeList)
	return args.Error(0)
}

func (m *MockStudentFeeRepository) CountByStructure(ctx context.Context, feeStructureID uuid.UUID) (int64, error) {
	args := m.Called(ctx, feeStructureID)
	return args.Get(0).(int64), args.Error(1)
}

type MockOutstandingCache struct {
	mock.Mock
}

func (m *MockOutstandingCache) Get(ctx context.Context, studentID uuid.UUID) (*OutstandingSummary, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OutstandingSummary), args.Error(1)
}

func (m *MockOutstandingCache) Set(ctx context.Context, summary *OutstandingSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockOutstandingCache) Invalidate(ctx context.Context, studentID uuid.UUID) error {
	args := m.Called(ctx, studentID)
	return args.Error(0)
}
