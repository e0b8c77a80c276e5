package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStudentRepository implements school.StudentRepository using GORM.
// All lookups return (nil, nil) when no row matches; callers translate
// absence into their own domain errors.
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GORM student repository
func NewGormStudentRepository(db *Database) *GormStudentRepository {
	return &GormStudentRepository{db: db.DB()}
}

// FindByID retrieves a student by ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Student, error) {
	var model models.StudentModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs retrieves students matching the given IDs
func (r *GormStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]school.Student, error) {
	if len(ids) == 0 {
		return []school.Student{}, nil
	}

	var modelList []models.StudentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find students: %w", err)
	}

	students := make([]school.Student, len(modelList))
	for i, model := range modelList {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// FindByClass retrieves students enrolled in a class
func (r *GormStudentRepository) FindByClass(ctx context.Context, classID uuid.UUID, filter shared.Filter) ([]school.Student, error) {
	query := r.db.WithContext(ctx).Model(&models.StudentModel{}).Where("class_id = ?", classID)
	query = applyFilter(query, filter)

	var modelList []models.StudentModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find students by class: %w", err)
	}

	students := make([]school.Student, len(modelList))
	for i, model := range modelList {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// Exists reports whether a student with the given ID exists
func (r *GormStudentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return count > 0, nil
}

// GormAcademicYearRepository implements school.AcademicYearRepository using GORM.
type GormAcademicYearRepository struct {
	db *gorm.DB
}

// NewGormAcademicYearRepository creates a new GORM academic year repository
func NewGormAcademicYearRepository(db *Database) *GormAcademicYearRepository {
	return &GormAcademicYearRepository{db: db.DB()}
}

// FindByID retrieves an academic year by ID
func (r *GormAcademicYearRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.AcademicYear, error) {
	var model models.AcademicYearModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find academic year: %w", err)
	}
	return model.ToDomain(), nil
}

// Exists reports whether an academic year with the given ID exists
func (r *GormAcademicYearRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AcademicYearModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check academic year existence: %w", err)
	}
	return count > 0, nil
}

// GormTermRepository implements school.TermRepository using GORM.
type GormTermRepository struct {
	db *gorm.DB
}

// NewGormTermRepository creates a new GORM term repository
func NewGormTermRepository(db *Database) *GormTermRepository {
	return &GormTermRepository{db: db.DB()}
}

// FindByID retrieves a term by ID
func (r *GormTermRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Term, error) {
	var model models.TermModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find term: %w", err)
	}
	return model.ToDomain(), nil
}

// Exists reports whether a term with the given ID exists
func (r *GormTermRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TermModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check term existence: %w", err)
	}
	return count > 0, nil
}

// GormClassRepository implements school.ClassRepository using GORM.
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GORM class repository
func NewGormClassRepository(db *Database) *GormClassRepository {
	return &GormClassRepository{db: db.DB()}
}

// FindByID retrieves a class by ID
func (r *GormClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Class, error) {
	var model models.ClassModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find class: %w", err)
	}
	return model.ToDomain(), nil
}

// Exists reports whether a class with the given ID exists
func (r *GormClassRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClassModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check class existence: %w", err)
	}
	return count > 0, nil
}

var (
	_ school.StudentRepository      = (*GormStudentRepository)(nil)
	_ school.AcademicYearRepository = (*GormAcademicYearRepository)(nil)
	_ school.TermRepository         = (*GormTermRepository)(nil)
	_ school.ClassRepository        = (*GormClassRepository)(nil)
)
