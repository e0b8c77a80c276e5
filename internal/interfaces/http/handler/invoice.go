package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/schoolms/backend/internal/application/billing"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
	defaultDueDays int
}

// NewInvoiceHandler creates a new InvoiceHandler. defaultDueDays is the
// due-date offset applied when a generate request has no explicit due date.
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService, defaultDueDays int) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		defaultDueDays: defaultDueDays,
	}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Generate)
		invoices.GET("", h.List)
		invoices.GET("/by-number/:number", h.GetByNumber)
		invoices.GET("/:id", h.Get)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.GET("/:id/verify", h.Verify)
	}
	rg.GET("/students/:id/invoices/outstanding", h.ListOutstanding)
}

// GenerateInvoiceRequest represents a request to generate an invoice
type GenerateInvoiceRequest struct {
	StudentID     string     `json:"student_id" binding:"required,uuid"`
	StudentFeeIDs []string   `json:"student_fee_ids" binding:"required,min=1,dive,uuid"`
	DueDate       *time.Time `json:"due_date"`
	Notes         string     `json:"notes" binding:"max=1000"`
}

// CancelInvoiceRequest represents a request to cancel an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListInvoicesRequest holds invoice list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	StudentID string     `form:"student_id" binding:"omitempty,uuid"`
	Status    string     `form:"status" binding:"omitempty,oneof=UNPAID PARTIAL PAID OVERDUE CANCELLED"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Overdue   bool       `form:"overdue"`
}

// Generate handles POST /invoices
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	studentFeeIDs := make([]uuid.UUID, 0, len(req.StudentFeeIDs))
	for _, raw := range req.StudentFeeIDs {
		studentFeeIDs = append(studentFeeIDs, uuid.MustParse(raw))
	}

	dueDate := time.Now().AddDate(0, 0, h.defaultDueDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	invoice, err := h.invoiceService.GenerateInvoice(c.Request.Context(), billingapp.GenerateInvoiceRequest{
		StudentID:     uuid.MustParse(req.StudentID),
		StudentFeeIDs: studentFeeIDs,
		DueDate:       dueDate,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.InvoiceFilter{
		Filter:   req.ToFilter(),
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Overdue:  req.Overdue,
	}
	if req.StudentID != "" {
		id := uuid.MustParse(req.StudentID)
		filter.StudentID = &id
	}
	if req.Status != "" {
		status := billing.InvoiceStatus(req.Status)
		filter.Status = &status
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	detail, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, detail)
}

// GetByNumber handles GET /invoices/by-number/:number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Invoice number is required")
		return
	}

	detail, err := h.invoiceService.GetInvoiceByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, detail)
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Verify handles GET /invoices/:id/verify
func (h *InvoiceHandler) Verify(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.VerifyInvoiceIntegrity(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"consistent": true})
}

// ListOutstanding handles GET /students/:id/invoices/outstanding
func (h *InvoiceHandler) ListOutstanding(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	invoices, err := h.invoiceService.ListOutstandingByStudent(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoices)
}
