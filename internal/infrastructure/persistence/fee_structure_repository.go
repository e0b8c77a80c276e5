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

// GormFeeStructureRepository implements fees.FeeStructureRepository using GORM.
type GormFeeStructureRepository struct {
	db *gorm.DB
}

// NewGormFeeStructureRepository creates a new GORM fee structure repository
func NewGormFeeStructureRepository(db *Database) *GormFeeStructureRepository {
	return &GormFeeStructureRepository{db: db.DB()}
}

// FindByID retrieves a fee structure by ID
func (r *GormFeeStructureRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.FeeStructure, error) {
	var model models.FeeStructureModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fee structure: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll retrieves fee structures matching the filter
func (r *GormFeeStructureRepository) FindAll(ctx context.Context, filter fees.FeeStructureFilter) ([]fees.FeeStructure, error) {
	query := r.applyStructureFilter(r.db.WithContext(ctx).Model(&models.FeeStructureModel{}), filter)
	query = applyFilter(query, filter.Filter)

	var modelList []models.FeeStructureModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find fee structures: %w", err)
	}

	structures := make([]fees.FeeStructure, len(modelList))
	for i, model := range modelList {
		structures[i] = *model.ToDomain()
	}
	return structures, nil
}

// FindByKey retrieves the structure for a (year, term, class, category) key
func (r *GormFeeStructureRepository) FindByKey(ctx context.Context, academicYearID, termID, classID, feeCategoryID uuid.UUID) (*fees.FeeStructure, error) {
	var model models.FeeStructureModel
	err := r.db.WithContext(ctx).
		Where("academic_year_id = ? AND term_id = ? AND class_id = ? AND fee_category_id = ?",
			academicYearID, termID, classID, feeCategoryID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fee structure by key: %w", err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a fee structure
func (r *GormFeeStructureRepository) Save(ctx context.Context, structure *fees.FeeStructure) error {
	model := models.FeeStructureModelFromDomain(structure)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save fee structure: %w", err)
	}
	return nil
}

// Delete removes a fee structure
func (r *GormFeeStructureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FeeStructureModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete fee structure: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of fee structures matching the filter
func (r *GormFeeStructureRepository) Count(ctx context.Context, filter fees.FeeStructureFilter) (int64, error) {
	query := r.applyStructureFilter(r.db.WithContext(ctx).Model(&models.FeeStructureModel{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count fee structures: %w", err)
	}
	return count, nil
}

func (r *GormFeeStructureRepository) applyStructureFilter(query *gorm.DB, filter fees.FeeStructureFilter) *gorm.DB {
	if filter.AcademicYearID != nil {
		query = query.Where("academic_year_id = ?", *filter.AcademicYearID)
	}
	if filter.TermID != nil {
		query = query.Where("term_id = ?", *filter.TermID)
	}
	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.FeeCategoryID != nil {
		query = query.Where("fee_category_id = ?", *filter.FeeCategoryID)
	}
	if filter.MandatoryOnly {
		query = query.Where("is_mandatory = ?", true)
	}
	return query
}

var _ fees.FeeStructureRepository = (*GormFeeStructureRepository)(nil)
