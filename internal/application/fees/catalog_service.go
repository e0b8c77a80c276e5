package fees

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CatalogService manages fee categories and fee structures.
type CatalogService struct {
	categoryRepo  fees.FeeCategoryRepository
	structureRepo fees.FeeStructureRepository
	yearRepo      school.AcademicYearRepository
	termRepo      school.TermRepository
	classRepo     school.ClassRepository
	logger        *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	categoryRepo fees.FeeCategoryRepository,
	structureRepo fees.FeeStructureRepository,
	yearRepo school.AcademicYearRepository,
	termRepo school.TermRepository,
	classRepo school.ClassRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		structureRepo: structureRepo,
		yearRepo:      yearRepo,
		termRepo:      termRepo,
		classRepo:     classRepo,
		logger:        logger,
	}
}

// CreateCategory creates a fee category with a unique name
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*fees.FeeCategory, error) {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeConflict,
			fmt.Sprintf("Fee category %q already exists", name))
	}

	category, err := fees.NewFeeCategory(name, description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}

	s.logger.Info("Fee category created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name),
	)
	return category, nil
}

// UpdateCategory renames a category. Categories referenced by a fee
// structure are immutable.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*fees.FeeCategory, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Fee category not found")
	}

	referenced, err := s.categoryRepo.IsReferenced(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check category references: %w", err)
	}
	if referenced {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			"Fee category is referenced by fee structures and cannot be changed")
	}

	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Category name cannot be empty")
	}
	if other, err := s.categoryRepo.FindByName(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	} else if other != nil && other.ID != id {
		return nil, shared.NewDomainError(shared.CodeConflict,
			fmt.Sprintf("Fee category %q already exists", name))
	}

	category.Name = name
	category.Description = description
	category.UpdatedAt = time.Now()
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes an unreferenced category
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Fee category not found")
	}

	referenced, err := s.categoryRepo.IsReferenced(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category references: %w", err)
	}
	if referenced {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Fee category is referenced by fee structures and cannot be deleted")
	}

	return s.categoryRepo.Delete(ctx, id)
}

// ListCategories returns categories with pagination
func (s *CatalogService) ListCategories(ctx context.Context, filter shared.Filter) (shared.Paginated[fees.FeeCategory], error) {
	items, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[fees.FeeCategory]{}, fmt.Errorf("failed to list categories: %w", err)
	}
	total, err := s.categoryRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[fees.FeeCategory]{}, fmt.Errorf("failed to count categories: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// CreateStructureRequest represents a request to create a fee structure
type CreateStructureRequest struct {
	FeeCategoryID  uuid.UUID
	AcademicYearID uuid.UUID
	TermID         uuid.UUID
	ClassID        uuid.UUID
	Amount         valueobject.Money
	IsMandatory    bool
	DueDate        *time.Time
}

// CreateStructure creates a fee structure after validating that all
// referenced entities exist and the (year, term, class, category) key is
// not already priced.
func (s *CatalogService) CreateStructure(ctx context.Context, req CreateStructureRequest) (*fees.FeeStructure, error) {
	category, err := s.categoryRepo.FindByID(ctx, req.FeeCategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Fee category not found")
	}

	for _, check := range []struct {
		name   string
		exists func(context.Context, uuid.UUID) (bool, error)
		id     uuid.UUID
	}{
		{"Academic year", s.yearRepo.Exists, req.AcademicYearID},
		{"Term", s.termRepo.Exists, req.TermID},
		{"Class", s.classRepo.Exists, req.ClassID},
	} {
		ok, err := check.exists(ctx, check.id)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", check.name, err)
		}
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound, check.name+" not found")
		}
	}

	existing, err := s.structureRepo.FindByKey(ctx, req.AcademicYearID, req.TermID, req.ClassID, req.FeeCategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check structure key: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeConflict,
			"A fee structure already exists for this year, term, class and category")
	}

	structure, err := fees.NewFeeStructure(
		req.FeeCategoryID, req.AcademicYearID, req.TermID, req.ClassID,
		req.Amount, req.IsMandatory, req.DueDate,
	)
	if err != nil {
		return nil, err
	}
	if err := s.structureRepo.Save(ctx, structure); err != nil {
		return nil, fmt.Errorf("failed to save structure: %w", err)
	}

	s.logger.Info("Fee structure created",
		zap.String("structure_id", structure.ID.String()),
		zap.String("category_id", req.FeeCategoryID.String()),
		zap.String("amount", req.Amount.String()),
	)
	return structure, nil
}

// UpdateStructureAmount reprices a structure. Existing obligations keep
// their snapshotted amounts; only future assignments see the new price.
func (s *CatalogService) UpdateStructureAmount(ctx context.Context, id uuid.UUID, amount valueobject.Money) (*fees.FeeStructure, error) {
	structure, err := s.structureRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load structure: %w", err)
	}
	if structure == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Fee structure not found")
	}

	if err := structure.UpdateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.structureRepo.Save(ctx, structure); err != nil {
		return nil, fmt.Errorf("failed to save structure: %w", err)
	}
	return structure, nil
}

// GetStructure returns one fee structure
func (s *CatalogService) GetStructure(ctx context.Context, id uuid.UUID) (*fees.FeeStructure, error) {
	structure, err := s.structureRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load structure: %w", err)
	}
	if structure == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Fee structure not found")
	}
	return structure, nil
}

// ListStructures returns fee structures matching the filter
func (s *CatalogService) ListStructures(ctx context.Context, filter fees.FeeStructureFilter) (shared.Paginated[fees.FeeStructure], error) {
	items, err := s.structureRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[fees.FeeStructure]{}, fmt.Errorf("failed to list structures: %w", err)
	}
	total, err := s.structureRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[fees.FeeStructure]{}, fmt.Errorf("failed to count structures: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
