package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	feesapp "github.com/schoolms/backend/internal/application/fees"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/interfaces/http/dto"
)

// AssignmentHandler handles fee assignment endpoints
type AssignmentHandler struct {
	BaseHandler
	assignmentService *feesapp.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(assignmentService *feesapp.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// RegisterRoutes registers assignment routes on the given group
func (h *AssignmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	assignments := rg.Group("/fee-assignments")
	{
		assignments.POST("", h.AssignFees)
		assignments.POST("/by-class", h.AssignFeesToClass)
	}
	rg.GET("/students/:id/fees", h.ListStudentFees)
	rg.GET("/fee-structures/:id/assignments", h.ListStructureAssignments)
}

// DiscountRequest is an optional per-student discount
type DiscountRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Amount    string `json:"amount" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=1,max=500"`
}

// AssignFeesRequest represents a request to assign a fee structure to students
type AssignFeesRequest struct {
	FeeStructureID string            `json:"fee_structure_id" binding:"required,uuid"`
	StudentIDs     []string          `json:"student_ids" binding:"required,min=1,dive,uuid"`
	Discounts      []DiscountRequest `json:"discounts" binding:"omitempty,dive"`
}

// AssignFeesToClassRequest represents a request to assign a fee structure to
// every active student of its class
type AssignFeesToClassRequest struct {
	FeeStructureID string `json:"fee_structure_id" binding:"required,uuid"`
}

// AssignFees handles POST /fee-assignments
func (h *AssignmentHandler) AssignFees(c *gin.Context) {
	var req AssignFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	studentIDs := make([]uuid.UUID, 0, len(req.StudentIDs))
	for _, raw := range req.StudentIDs {
		studentIDs = append(studentIDs, uuid.MustParse(raw))
	}

	discounts := make(map[uuid.UUID]feesapp.StudentDiscount, len(req.Discounts))
	for _, d := range req.Discounts {
		amount, err := valueobject.NewMoneyFromString(d.Amount)
		if err != nil {
			h.BadRequest(c, "Invalid discount amount")
			return
		}
		discounts[uuid.MustParse(d.StudentID)] = feesapp.StudentDiscount{
			Amount: amount,
			Reason: d.Reason,
		}
	}

	result, err := h.assignmentService.AssignFees(c.Request.Context(), feesapp.AssignFeesRequest{
		FeeStructureID: uuid.MustParse(req.FeeStructureID),
		StudentIDs:     studentIDs,
		Discounts:      discounts,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AssignFeesToClass handles POST /fee-assignments/by-class
func (h *AssignmentHandler) AssignFeesToClass(c *gin.Context) {
	var req AssignFeesToClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.assignmentService.AssignFeesToClass(c.Request.Context(), uuid.MustParse(req.FeeStructureID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListStructureAssignments handles GET /fee-structures/:id/assignments
func (h *AssignmentHandler) ListStructureAssignments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid structure ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	assignments, err := h.assignmentService.ListStructureAssignments(c.Request.Context(), id, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, assignments)
}

// ListStudentFees handles GET /students/:id/fees
func (h *AssignmentHandler) ListStudentFees(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	studentFees, err := h.assignmentService.ListStudentFees(c.Request.Context(), id, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, studentFees)
}
