package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentHandler_AssignFees_Success(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.seedStudent(t, "ADM-1001")
	second := ts.seedStudent(t, "ADM-1002")
	structure := ts.seedStructure(t, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", AssignFeesRequest{
		FeeStructureID: structure.ID.String(),
		StudentIDs:     []string{first.ID.String(), second.ID.String()},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["created"])
	assert.Equal(t, float64(0), data["skipped"])
}

func TestAssignmentHandler_AssignFees_Idempotent(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-1003")
	structure := ts.seedStructure(t, "450.00")

	body := AssignFeesRequest{
		FeeStructureID: structure.ID.String(),
		StudentIDs:     []string{student.ID.String()},
	}
	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/fee-assignments", body)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(0), data["created"])
	assert.Equal(t, float64(1), data["skipped"])
}

func TestAssignmentHandler_AssignFees_WithDiscount(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-1004")
	structure := ts.seedStructure(t, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", AssignFeesRequest{
		FeeStructureID: structure.ID.String(),
		StudentIDs:     []string{student.ID.String()},
		Discounts: []DiscountRequest{{
			StudentID: student.ID.String(),
			Amount:    "50.00",
			Reason:    "sibling discount",
		}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.request(t, http.MethodGet, "/api/v1/students/"+student.ID.String()+"/fees", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeResponse(t, w)["data"].([]any)
	require.Len(t, items, 1)
	fee := items[0].(map[string]any)
	assert.Equal(t, "400", fee["net_amount"])
	assert.Equal(t, "50", fee["discount_amount"])
}

func TestAssignmentHandler_AssignFees_DiscountWithoutReason(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-1005")
	structure := ts.seedStructure(t, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", AssignFeesRequest{
		FeeStructureID: structure.ID.String(),
		StudentIDs:     []string{student.ID.String()},
		Discounts: []DiscountRequest{{
			StudentID: student.ID.String(),
			Amount:    "50.00",
		}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandler_AssignFees_UnknownStructure(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-1006")

	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", AssignFeesRequest{
		FeeStructureID: uuid.NewString(),
		StudentIDs:     []string{student.ID.String()},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandler_AssignFees_UnknownStudentSkipped(t *testing.T) {
	ts := setupTestServer(t)
	student := ts.seedStudent(t, "ADM-1007")
	structure := ts.seedStructure(t, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", AssignFeesRequest{
		FeeStructureID: structure.ID.String(),
		StudentIDs:     []string{student.ID.String(), uuid.NewString()},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["created"])
	assert.Equal(t, float64(1), data["skipped"])
	skipped := data["skipped_students"].([]any)
	require.Len(t, skipped, 1)
}

func TestAssignmentHandler_ListStructureAssignments(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.seedStudent(t, "ADM-1008")
	second := ts.seedStudent(t, "ADM-1009")
	structure := ts.seedStructure(t, "450.00")

	w := ts.request(t, http.MethodPost, "/api/v1/fee-assignments", AssignFeesRequest{
		FeeStructureID: structure.ID.String(),
		StudentIDs:     []string{first.ID.String(), second.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/fee-structures/"+structure.ID.String()+"/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	items := decodeResponse(t, w)["data"].([]any)
	assert.Len(t, items, 2)
}

func TestAssignmentHandler_ListStructureAssignments_UnknownStructure(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/fee-structures/"+uuid.NewString()+"/assignments", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandler_ListStudentFees_UnknownStudent(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/students/"+uuid.NewString()+"/fees", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
