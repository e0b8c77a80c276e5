package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFeeCategoryRepository implements fees.FeeCategoryRepository using GORM.
type GormFeeCategoryRepository struct {
	db *gorm.DB
}

// NewGormFeeCategoryRepository creates a new GORM fee category repository
func NewGormFeeCategoryRepository(db *Database) *GormFeeCategoryRepository {
	return &GormFeeCategoryRepository{db: db.DB()}
}

// FindByID retrieves a fee category by ID
func (r *GormFeeCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.FeeCategory, error) {
	var model models.FeeCategoryModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fee category: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByName retrieves a fee category by its exact name
func (r *GormFeeCategoryRepository) FindByName(ctx context.Context, name string) (*fees.FeeCategory, error) {
	var model models.FeeCategoryModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fee category by name: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll retrieves fee categories matching the filter
func (r *GormFeeCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]fees.FeeCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.FeeCategoryModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	query = applyFilter(query, filter)

	var modelList []models.FeeCategoryModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find fee categories: %w", err)
	}

	categories := make([]fees.FeeCategory, len(modelList))
	for i, model := range modelList {
		categories[i] = *model.ToDomain()
	}
	return categories, nil
}

// Save creates or updates a fee category
func (r *GormFeeCategoryRepository) Save(ctx context.Context, category *fees.FeeCategory) error {
	model := &models.FeeCategoryModel{}
	model.FromDomain(category)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save fee category: %w", err)
	}
	return nil
}

// Delete removes a fee category
func (r *GormFeeCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FeeCategoryModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete fee category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of fee categories matching the filter
func (r *GormFeeCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FeeCategoryModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count fee categories: %w", err)
	}
	return count, nil
}

// IsReferenced reports whether any fee structure references the category
func (r *GormFeeCategoryRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FeeStructureModel{}).
		Where("fee_category_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check fee category references: %w", err)
	}
	return count > 0, nil
}

var _ fees.FeeCategoryRepository = (*GormFeeCategoryRepository)(nil)
