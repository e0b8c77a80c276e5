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

// GormStudentFeeRepository implements fees.StudentFeeRepository using GORM.
type GormStudentFeeRepository struct {
	db *gorm.DB
}

// NewGormStudentFeeRepository creates a new GORM student fee repository
func NewGormStudentFeeRepository(db *Database) *GormStudentFeeRepository {
	return &GormStudentFeeRepository{db: db.DB()}
}

// FindByID retrieves a student fee by ID
func (r *GormStudentFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.StudentFee, error) {
	var model models.StudentFeeModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student fee: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs retrieves student fees matching the given IDs
func (r *GormStudentFeeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]fees.StudentFee, error) {
	if len(ids) == 0 {
		return []fees.StudentFee{}, nil
	}

	var modelList []models.StudentFeeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find student fees: %w", err)
	}

	feeList := make([]fees.StudentFee, len(modelList))
	for i, model := range modelList {
		feeList[i] = *model.ToDomain()
	}
	return feeList, nil
}

// FindByStudent retrieves a student's fee obligations
func (r *GormStudentFeeRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	query := r.db.WithContext(ctx).Model(&models.StudentFeeModel{}).Where("student_id = ?", studentID)
	query = applyFilter(query, filter)

	var modelList []models.StudentFeeModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find student fees by student: %w", err)
	}

	feeList := make([]fees.StudentFee, len(modelList))
	for i, model := range modelList {
		feeList[i] = *model.ToDomain()
	}
	return feeList, nil
}

// FindOutstandingByStudent retrieves a student's obligations not yet attached
// to an active invoice, oldest first.
func (r *GormStudentFeeRepository) FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]fees.StudentFee, error) {
	var modelList []models.StudentFeeModel
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND invoice_id IS NULL", studentID).
		Order("created_at ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find outstanding student fees: %w", err)
	}

	feeList := make([]fees.StudentFee, len(modelList))
	for i, model := range modelList {
		feeList[i] = *model.ToDomain()
	}
	return feeList, nil
}

// FindByStructure retrieves obligations derived from a fee structure
func (r *GormStudentFeeRepository) FindByStructure(ctx context.Context, feeStructureID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	query := r.db.WithContext(ctx).Model(&models.StudentFeeModel{}).Where("fee_structure_id = ?", feeStructureID)
	query = applyFilter(query, filter)

	var modelList []models.StudentFeeModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find student fees by structure: %w", err)
	}

	feeList := make([]fees.StudentFee, len(modelList))
	for i, model := range modelList {
		feeList[i] = *model.ToDomain()
	}
	return feeList, nil
}

// CreateIfAbsent inserts the fee unless one already exists for its
// (student, structure) pair. The unique index on that pair makes the insert
// race-free; a conflicting row turns the insert into a no-op and the method
// reports false.
func (r *GormStudentFeeRepository) CreateIfAbsent(ctx context.Context, fee *fees.StudentFee) (bool, error) {
	model := models.StudentFeeModelFromDomain(fee)

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "fee_structure_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create student fee: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Save creates or updates a student fee
func (r *GormStudentFeeRepository) Save(ctx context.Context, fee *fees.StudentFee) error {
	model := models.StudentFeeModelFromDomain(fee)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save student fee: %w", err)
	}
	return nil
}

// SaveBatch persists a list of student fees in one transaction
func (r *GormStudentFeeRepository) SaveBatch(ctx context.Context, feeList []*fees.StudentFee) error {
	if len(feeList) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fee := range feeList {
			model := models.StudentFeeModelFromDomain(fee)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(model).Error
			if err != nil {
				return fmt.Errorf("failed to save student fee %s: %w", fee.ID, err)
			}
		}
		return nil
	})
}

// CountByStructure returns the number of obligations derived from a structure
func (r *GormStudentFeeRepository) CountByStructure(ctx context.Context, feeStructureID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentFeeModel{}).
		Where("fee_structure_id = ?", feeStructureID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count student fees: %w", err)
	}
	return count, nil
}

var _ fees.StudentFeeRepository = (*GormStudentFeeRepository)(nil)
