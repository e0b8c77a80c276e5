package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceHandler_Generate_Success(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2001")
	fee := ts.seedOutstandingFee(t, student.ID, "450.00")

	dueDate := time.Now().AddDate(0, 1, 0)
	w := ts.request(t, http.MethodPost, "/api/v1/invoices", GenerateInvoiceRequest{
		StudentID:     student.ID.String(),
		StudentFeeIDs: []string{fee.ID.String()},
		DueDate:       &dueDate,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "450", data["total_amount"])
	assert.Equal(t, "UNPAID", data["status"])

	stored, err := ts.studentFeeRepo.FindByID(context.Background(), fee.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.InvoiceID)
}

func TestInvoiceHandler_Generate_FeeAlreadyInvoiced(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2002")
	fee := ts.seedOutstandingFee(t, student.ID, "450.00")

	body := GenerateInvoiceRequest{
		StudentID:     student.ID.String(),
		StudentFeeIDs: []string{fee.ID.String()},
	}
	w := ts.request(t, http.MethodPost, "/api/v1/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/invoices", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeConflict, errorCode(t, w))
}

func TestInvoiceHandler_Generate_UnknownStudent(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/v1/invoices", GenerateInvoiceRequest{
		StudentID:     uuid.NewString(),
		StudentFeeIDs: []string{uuid.NewString()},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Generate_EmptyFeeList(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2003")

	w := ts.request(t, http.MethodPost, "/api/v1/invoices", GenerateInvoiceRequest{
		StudentID:     student.ID.String(),
		StudentFeeIDs: []string{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_Get_WithPayments(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2004")
	invoice := ts.seedInvoice(t, student.ID, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/payments", RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    "200.00",
		Method:    "CASH",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/invoices/"+invoice.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok)
	inv, ok := data["invoice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PARTIAL", inv["status"])
	payments, ok := data["payments"].([]any)
	require.True(t, ok)
	assert.Len(t, payments, 1)
}

func TestInvoiceHandler_GetByNumber(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2005")
	invoice := ts.seedInvoice(t, student.ID, "450.00")

	w := ts.request(t, http.MethodGet, "/api/v1/invoices/by-number/"+invoice.InvoiceNumber, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]any)
	inv := data["invoice"].(map[string]any)
	assert.Equal(t, invoice.InvoiceNumber, inv["invoice_number"])
}

func TestInvoiceHandler_Get_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/invoices/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeNotFound, errorCode(t, w))
}

func TestInvoiceHandler_Cancel_ReleasesFees(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2006")
	fee := ts.seedOutstandingFee(t, student.ID, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/invoices", GenerateInvoiceRequest{
		StudentID:     student.ID.String(),
		StudentFeeIDs: []string{fee.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	invoiceID := resp["data"].(map[string]any)["ID"].(string)

	w = ts.request(t, http.MethodPost, "/api/v1/invoices/"+invoiceID+"/cancel",
		CancelInvoiceRequest{Reason: "wrong student"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := ts.studentFeeRepo.FindByID(context.Background(), fee.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InvoiceID)
}

func TestInvoiceHandler_Cancel_WithPaymentsRejected(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2007")
	invoice := ts.seedInvoice(t, student.ID, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/payments", RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    "100.00",
		Method:    "CASH",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/cancel",
		CancelInvoiceRequest{Reason: "entered twice"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, shared.CodeInvalidState, errorCode(t, w))
}

func TestInvoiceHandler_List_FilterByStudent(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2008")
	other := ts.seedStudent(t, "ADM-2009")
	ts.seedInvoice(t, student.ID, "450.00")
	ts.seedInvoice(t, student.ID, "150.00")
	ts.seedInvoice(t, other.ID, "300.00")

	w := ts.request(t, http.MethodGet, "/api/v1/invoices?student_id="+student.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	items, ok := resp["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
	meta, ok := resp["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), meta["total"])
}

func TestInvoiceHandler_Verify_Consistent(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2010")
	invoice := ts.seedInvoice(t, student.ID, "450.00")

	w := ts.request(t, http.MethodGet, "/api/v1/invoices/"+invoice.ID.String()+"/verify", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestInvoiceHandler_ListOutstanding(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-2011")
	invoice := ts.seedInvoice(t, student.ID, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/payments", RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    "450.00",
		Method:    "CASH",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	ts.seedInvoice(t, student.ID, "150.00")

	w = ts.request(t, http.MethodGet, "/api/v1/students/"+student.ID.String()+"/invoices/outstanding", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	items, ok := resp["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}
