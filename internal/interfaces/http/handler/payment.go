package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/schoolms/backend/internal/application/billing"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RegisterRoutes registers payment routes on the given group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Record)
		payments.GET("/:id", h.Get)
		payments.POST("/:id/reverse", h.Reverse)
	}
	rg.GET("/students/:id/payments", h.ListByStudent)
	rg.GET("/students/:id/outstanding", h.OutstandingSummary)
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	InvoiceID   string     `json:"invoice_id" binding:"required,uuid"`
	Amount      string     `json:"amount" binding:"required"`
	Method      string     `json:"method" binding:"required,paymentmethod"`
	PaymentDate *time.Time `json:"payment_date"`
	Notes       string     `json:"notes" binding:"max=1000"`
}

// ReversePaymentRequest represents a request to reverse a payment
type ReversePaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), billingapp.RecordPaymentRequest{
		InvoiceID:   uuid.MustParse(req.InvoiceID),
		Amount:      amount,
		Method:      billing.PaymentMethod(req.Method),
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Reverse handles POST /payments/:id/reverse
func (h *PaymentHandler) Reverse(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req ReversePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.ReversePayment(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByStudent handles GET /students/:id/payments
func (h *PaymentHandler) ListByStudent(c *gin.Context) {
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

	payments, err := h.paymentService.ListPaymentsByStudent(c.Request.Context(), id, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// OutstandingSummary handles GET /students/:id/outstanding
func (h *PaymentHandler) OutstandingSummary(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	summary, err := h.paymentService.GetOutstandingSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
