package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpenInvoice(t *testing.T, studentID uuid.UUID, total float64) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(
		"INV-20260830-00001",
		studentID,
		time.Now(),
		time.Now().AddDate(0, 1, 0),
		[]billing.InvoiceLine{{StudentFeeID: uuid.New(), Amount: valueobject.NewMoneyFromFloat(total)}},
		"",
	)
	require.NoError(t, err)
	return inv
}

func newPaymentService(invoiceRepo *MockInvoiceRepository, paymentRepo *MockPaymentRepository, studentRepo *MockStudentRepository, cache OutstandingCache) *PaymentService {
	return NewPaymentService(paymentRepo, invoiceRepo, studentRepo, cache, zap.NewNop())
}

func TestPaymentService_RecordPayment_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	studentRepo := new(MockStudentRepository)
	cache := new(MockOutstandingCache)
	svc := newPaymentService(invoiceRepo, paymentRepo, studentRepo, cache)

	studentID := uuid.New()
	invoice := newOpenInvoice(t, studentID, 450.00)

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	paymentRepo.On("NextPaymentNumber", mock.Anything).Return("PMT-20260830-00001", nil)
	paymentRepo.On("CreateWithInvoice", mock.Anything, mock.AnythingOfType("*billing.Payment"), invoice).Return(nil)
	cache.On("Invalidate", mock.Anything, studentID).Return(nil)

	result, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Amount:      valueobject.NewMoneyFromFloat(200.00),
		Method:      billing.PaymentMethodCash,
		PaymentDate: time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "PMT-20260830-00001", result.Payment.PaymentNumber)
	assert.Equal(t, studentID, result.Payment.StudentID)
	assert.Equal(t, billing.InvoiceStatusPartial, result.Invoice.Status)
	assert.True(t, result.Invoice.BalanceAmount.Equal(decimal.NewFromFloat(250.00)))
	paymentRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_ClosesInvoice(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	cache := new(MockOutstandingCache)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), cache)

	invoice := newOpenInvoice(t, uuid.New(), 450.00)

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	paymentRepo.On("NextPaymentNumber", mock.Anything).Return("PMT-20260830-00002", nil)
	paymentRepo.On("CreateWithInvoice", mock.Anything, mock.Anything, invoice).Return(nil)
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyFromFloat(450.00),
		Method:    billing.PaymentMethodBank,
	})

	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, result.Invoice.Status)
	assert.True(t, result.Invoice.BalanceAmount.IsZero())
}

func TestPaymentService_RecordPayment_OverpaymentRejected(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), nil)

	invoice := newOpenInvoice(t, uuid.New(), 450.00)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyFromFloat(450.01),
		Method:    billing.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeOverpayment))
	paymentRepo.AssertNotCalled(t, "CreateWithInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_InvoiceNotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	svc := newPaymentService(invoiceRepo, new(MockPaymentRepository), new(MockStudentRepository), nil)

	id := uuid.New()
	invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: id,
		Amount:    valueobject.NewMoneyFromFloat(100.00),
		Method:    billing.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestPaymentService_RecordPayment_RetriesOnLockConflict(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	cache := new(MockOutstandingCache)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), cache)

	studentID := uuid.New()
	first := newOpenInvoice(t, studentID, 450.00)
	fresh := newOpenInvoice(t, studentID, 450.00)
	fresh.ID = first.ID

	invoiceRepo.On("FindByID", mock.Anything, first.ID).Return(first, nil).Once()
	invoiceRepo.On("FindByID", mock.Anything, first.ID).Return(fresh, nil).Once()
	paymentRepo.On("NextPaymentNumber", mock.Anything).Return("PMT-20260830-00003", nil)
	paymentRepo.On("CreateWithInvoice", mock.Anything, mock.Anything, first).Return(shared.ErrConcurrencyConflict).Once()
	paymentRepo.On("CreateWithInvoice", mock.Anything, mock.Anything, fresh).Return(nil).Once()
	cache.On("Invalidate", mock.Anything, studentID).Return(nil)

	result, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: first.ID,
		Amount:    valueobject.NewMoneyFromFloat(100.00),
		Method:    billing.PaymentMethodMobileMoney,
	})

	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPartial, result.Invoice.Status)
	invoiceRepo.AssertNumberOfCalls(t, "FindByID", 2)
}

func TestPaymentService_RecordPayment_GivesUpAfterMaxRetries(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), nil)

	invoice := newOpenInvoice(t, uuid.New(), 4500.00)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	paymentRepo.On("NextPaymentNumber", mock.Anything).Return("PMT-20260830-00004", nil)
	paymentRepo.On("CreateWithInvoice", mock.Anything, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyFromFloat(100.00),
		Method:    billing.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))
	paymentRepo.AssertNumberOfCalls(t, "CreateWithInvoice", maxLockRetries+1)
}

func TestPaymentService_ReversePayment_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	cache := new(MockOutstandingCache)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), cache)

	studentID := uuid.New()
	invoice := newOpenInvoice(t, studentID, 450.00)
	require.NoError(t, invoice.ApplyPayment(valueobject.NewMoneyFromFloat(450.00)))
	require.Equal(t, billing.InvoiceStatusPaid, invoice.Status)

	payment, err := billing.NewPayment("PMT-20260830-00005", invoice.ID, studentID,
		valueobject.NewMoneyFromFloat(450.00), billing.PaymentMethodCash, time.Now(), "")
	require.NoError(t, err)

	paymentRepo.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	paymentRepo.On("SaveWithInvoice", mock.Anything, payment, invoice).Return(nil)
	cache.On("Invalidate", mock.Anything, studentID).Return(nil)

	result, err := svc.ReversePayment(context.Background(), payment.ID, "cashier error")

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusReversed, result.Payment.Status)
	assert.Equal(t, billing.InvoiceStatusUnpaid, result.Invoice.Status)
	assert.True(t, result.Invoice.PaidAmount.IsZero())
	// The payment amount is retained for audit.
	assert.True(t, result.Payment.Amount.Equal(decimal.NewFromFloat(450.00)))
}

func TestPaymentService_ReversePayment_AlreadyReversed(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), nil)

	studentID := uuid.New()
	invoice := newOpenInvoice(t, studentID, 450.00)
	payment, err := billing.NewPayment("PMT-20260830-00006", invoice.ID, studentID,
		valueobject.NewMoneyFromFloat(100.00), billing.PaymentMethodCash, time.Now(), "")
	require.NoError(t, err)
	require.NoError(t, payment.Reverse("first"))

	paymentRepo.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err = svc.ReversePayment(context.Background(), payment.ID, "second")

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
	paymentRepo.AssertNotCalled(t, "SaveWithInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_ReversePayment_CorruptStateIsInvariantViolation(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(invoiceRepo, paymentRepo, new(MockStudentRepository), nil)

	studentID := uuid.New()
	invoice := newOpenInvoice(t, studentID, 450.00)
	require.NoError(t, invoice.ApplyPayment(valueobject.NewMoneyFromFloat(100.00)))

	// Payment claims more than the invoice has recorded as paid.
	payment, err := billing.NewPayment("PMT-20260830-00007", invoice.ID, studentID,
		valueobject.NewMoneyFromFloat(200.00), billing.PaymentMethodCash, time.Now(), "")
	require.NoError(t, err)

	paymentRepo.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err = svc.ReversePayment(context.Background(), payment.ID, "mismatch")

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeInvariantViolation))
	paymentRepo.AssertNotCalled(t, "SaveWithInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_GetOutstandingSummary_CacheHit(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	studentRepo := new(MockStudentRepository)
	cache := new(MockOutstandingCache)
	svc := newPaymentService(invoiceRepo, new(MockPaymentRepository), studentRepo, cache)

	studentID := uuid.New()
	cached := &OutstandingSummary{
		StudentID:    studentID,
		TotalDue:     decimal.NewFromFloat(450.00),
		InvoiceCount: 1,
		ComputedAt:   time.Now(),
	}

	studentRepo.On("Exists", mock.Anything, studentID).Return(true, nil)
	cache.On("Get", mock.Anything, studentID).Return(cached, nil)

	summary, err := svc.GetOutstandingSummary(context.Background(), studentID)

	require.NoError(t, err)
	assert.Equal(t, cached, summary)
	invoiceRepo.AssertNotCalled(t, "SumOutstandingByStudent", mock.Anything, mock.Anything)
}

func TestPaymentService_GetOutstandingSummary_CacheMiss(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	studentRepo := new(MockStudentRepository)
	cache := new(MockOutstandingCache)
	svc := newPaymentService(invoiceRepo, new(MockPaymentRepository), studentRepo, cache)

	studentID := uuid.New()
	open := []billing.Invoice{*newOpenInvoice(t, studentID, 450.00), *newOpenInvoice(t, studentID, 200.00)}

	studentRepo.On("Exists", mock.Anything, studentID).Return(true, nil)
	cache.On("Get", mock.Anything, studentID).Return(nil, nil)
	invoiceRepo.On("SumOutstandingByStudent", mock.Anything, studentID).Return(decimal.NewFromFloat(650.00), nil)
	invoiceRepo.On("FindOutstandingByStudent", mock.Anything, studentID).Return(open, nil)
	cache.On("Set", mock.Anything, mock.AnythingOfType("*billing.OutstandingSummary")).Return(nil)

	summary, err := svc.GetOutstandingSummary(context.Background(), studentID)

	require.NoError(t, err)
	assert.True(t, summary.TotalDue.Equal(decimal.NewFromFloat(650.00)))
	assert.Equal(t, 2, summary.InvoiceCount)
	cache.AssertExpectations(t)
}

func TestPaymentService_GetOutstandingSummary_StudentNotFound(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	svc := newPaymentService(new(MockInvoiceRepository), new(MockPaymentRepository), studentRepo, nil)

	studentID := uuid.New()
	studentRepo.On("Exists", mock.Anything, studentID).Return(false, nil)

	_, err := svc.GetOutstandingSummary(context.Background(), studentID)

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}
