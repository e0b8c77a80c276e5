package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	feesapp "github.com/schoolms/backend/internal/application/fees"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles fee category and fee structure endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *feesapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *feesapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers catalog routes on the given group
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/fee-categories")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	structures := rg.Group("/fee-structures")
	{
		structures.POST("", h.CreateStructure)
		structures.GET("", h.ListStructures)
		structures.GET("/:id", h.GetStructure)
		structures.PUT("/:id/amount", h.UpdateStructureAmount)
	}
}

// CreateCategoryRequest represents a request to create a fee category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateCategoryRequest represents a request to update a fee category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreateStructureRequest represents a request to create a fee structure
type CreateStructureRequest struct {
	FeeCategoryID  string     `json:"fee_category_id" binding:"required,uuid"`
	AcademicYearID string     `json:"academic_year_id" binding:"required,uuid"`
	TermID         string     `json:"term_id" binding:"required,uuid"`
	ClassID        string     `json:"class_id" binding:"required,uuid"`
	Amount         string     `json:"amount" binding:"required"`
	IsMandatory    bool       `json:"is_mandatory"`
	DueDate        *time.Time `json:"due_date"`
}

// UpdateStructureAmountRequest represents a request to reprice a structure
type UpdateStructureAmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// ListStructuresRequest holds fee structure list query parameters
type ListStructuresRequest struct {
	dto.ListRequest
	AcademicYearID string `form:"academic_year_id" binding:"omitempty,uuid"`
	TermID         string `form:"term_id" binding:"omitempty,uuid"`
	ClassID        string `form:"class_id" binding:"omitempty,uuid"`
	FeeCategoryID  string `form:"fee_category_id" binding:"omitempty,uuid"`
	MandatoryOnly  bool   `form:"mandatory_only"`
}

// CreateCategory handles POST /fee-categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// ListCategories handles GET /fee-categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.ListCategories(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateCategory handles PUT /fee-categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// DeleteCategory handles DELETE /fee-categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateStructure handles POST /fee-structures
func (h *CatalogHandler) CreateStructure(c *gin.Context) {
	var req CreateStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	structure, err := h.catalogService.CreateStructure(c.Request.Context(), feesapp.CreateStructureRequest{
		FeeCategoryID:  uuid.MustParse(req.FeeCategoryID),
		AcademicYearID: uuid.MustParse(req.AcademicYearID),
		TermID:         uuid.MustParse(req.TermID),
		ClassID:        uuid.MustParse(req.ClassID),
		Amount:         amount,
		IsMandatory:    req.IsMandatory,
		DueDate:        req.DueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, structure)
}

// ListStructures handles GET /fee-structures
func (h *CatalogHandler) ListStructures(c *gin.Context) {
	var req ListStructuresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := fees.FeeStructureFilter{
		Filter:        req.ToFilter(),
		MandatoryOnly: req.MandatoryOnly,
	}
	if req.AcademicYearID != "" {
		id := uuid.MustParse(req.AcademicYearID)
		filter.AcademicYearID = &id
	}
	if req.TermID != "" {
		id := uuid.MustParse(req.TermID)
		filter.TermID = &id
	}
	if req.ClassID != "" {
		id := uuid.MustParse(req.ClassID)
		filter.ClassID = &id
	}
	if req.FeeCategoryID != "" {
		id := uuid.MustParse(req.FeeCategoryID)
		filter.FeeCategoryID = &id
	}

	result, err := h.catalogService.ListStructures(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetStructure handles GET /fee-structures/:id
func (h *CatalogHandler) GetStructure(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid structure ID")
		return
	}

	structure, err := h.catalogService.GetStructure(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, structure)
}

// UpdateStructureAmount handles PUT /fee-structures/:id/amount
func (h *CatalogHandler) UpdateStructureAmount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid structure ID")
		return
	}

	var req UpdateStructureAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	structure, err := h.catalogService.UpdateStructureAmount(c.Request.Context(), id, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, structure)
}
