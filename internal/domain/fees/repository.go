package fees

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
)

// FeeCategoryRepository persists fee categories
type FeeCategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FeeCategory, error)
	FindByName(ctx context.Context, name string) (*FeeCategory, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]FeeCategory, error)
	Save(ctx context.Context, category *FeeCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// IsReferenced reports whether any fee structure references the category.
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// FeeStructureFilter narrows fee structure queries
type FeeStructureFilter struct {
	shared.Filter
	AcademicYearID *uuid.UUID
	TermID         *uuid.UUID
	ClassID        *uuid.UUID
	FeeCategoryID  *uuid.UUID
	MandatoryOnly  bool
}

// FeeStructureRepository persists fee structures
type FeeStructureRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FeeStructure, error)
	FindAll(ctx context.Context, filter FeeStructureFilter) ([]FeeStructure, error)
	FindByKey(ctx context.Context, academicYearID, termID, classID, feeCategoryID uuid.UUID) (*FeeStructure, error)
	Save(ctx context.Context, structure *FeeStructure) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter FeeStructureFilter) (int64, error)
}

// StudentFeeRepository persists student fee obligations
type StudentFeeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StudentFee, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]StudentFee, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]StudentFee, error)
	// FindOutstandingByStudent returns obligations not attached to an active
	// invoice, ordered by creation date ascending.
	FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]StudentFee, error)
	FindByStructure(ctx context.Context, feeStructureID uuid.UUID, filter shared.Filter) ([]StudentFee, error)
	// CreateIfAbsent inserts the fee unless one already exists for its
	// (student, structure) pair. Returns false when the insert was skipped.
	// The uniqueness guarantee comes from the storage-level unique index,
	// keeping the skip-if-exists rule race-free under concurrent re-runs.
	CreateIfAbsent(ctx context.Context, fee *StudentFee) (bool, error)
	Save(ctx context.Context, fee *StudentFee) error
	SaveBatch(ctx context.Context, feeList []*StudentFee) error
	CountByStructure(ctx context.Context, feeStructureID uuid.UUID) (int64, error)
}
