package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
)

// StudentRepository provides read access to student reference data.
// Billing never mutates students.
type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Student, error)
	FindByClass(ctx context.Context, classID uuid.UUID, filter shared.Filter) ([]Student, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AcademicYearRepository provides read access to academic year reference data
type AcademicYearRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AcademicYear, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TermRepository provides read access to term reference data
type TermRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Term, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ClassRepository provides read access to class reference data
type ClassRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Class, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
