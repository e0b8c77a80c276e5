package fees

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockFeeCategoryRepository struct {
	mock.Mock
}

func (m *MockFeeCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.FeeCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.FeeCategory), args.Error(1)
}

func (m *MockFeeCategoryRepository) FindByName(ctx context.Context, name string) (*fees.FeeCategory, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.FeeCategory), args.Error(1)
}

func (m *MockFeeCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]fees.FeeCategory, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]fees.FeeCategory), args.Error(1)
}

func (m *MockFeeCategoryRepository) Save(ctx context.Context, category *fees.FeeCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockFeeCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeeCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeeCategoryRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockFeeStructureRepository struct {
	mock.Mock
}

func (m *MockFeeStructureRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.FeeStructure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.FeeStructure), args.Error(1)
}

func (m *MockFeeStructureRepository) FindAll(ctx context.Context, filter fees.FeeStructureFilter) ([]fees.FeeStructure, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]fees.FeeStructure), args.Error(1)
}

func (m *MockFeeStructureRepository) FindByKey(ctx context.Context, academicYearID, termID, classID, feeCategoryID uuid.UUID) (*fees.FeeStructure, error) {
	args := m.Called(ctx, academicYearID, termID, classID, feeCategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.FeeStructure), args.Error(1)
}

func (m *MockFeeStructureRepository) Save(ctx context.Context, structure *fees.FeeStructure) error {
	args := m.Called(ctx, structure)
	return args.Error(0)
}

func (m *MockFeeStructureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeeStructureRepository) Count(ctx context.Context, filter fees.FeeStructureFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockStudentFeeRepository struct {
	mock.Mock
}

func (m *MockStudentFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.StudentFee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]fees.StudentFee, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindOutstandingByStudent(ctx context.Context, studentID uuid.UUID) ([]fees.StudentFee, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) FindByStructure(ctx context.Context, feeStructureID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	args := m.Called(ctx, feeStructureID, filter)
	return args.Get(0).([]fees.StudentFee), args.Error(1)
}

func (m *MockStudentFeeRepository) CreateIfAbsent(ctx context.Context, fee *fees.StudentFee) (bool, error) {
	args := m.Called(ctx, fee)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudentFeeRepository) Save(ctx context.Context, fee *fees.StudentFee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockStudentFeeRepository) SaveBatch(ctx context.Context, feeList []*fees.StudentFee) error {
	args := m.Called(ctx, feeList)
	return args.Error(0)
}

func (m *MockStudentFeeRepository) CountByStructure(ctx context.Context, feeStructureID uuid.UUID) (int64, error) {
	args := m.Called(ctx, feeStructureID)
	return args.Get(0).(int64), args.Error(1)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]school.Student, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]school.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByClass(ctx context.Context, classID uuid.UUID, filter shared.Filter) ([]school.Student, error) {
	args := m.Called(ctx, classID, filter)
	return args.Get(0).([]school.Student), args.Error(1)
}

func (m *MockStudentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockAcademicYearRepository struct {
	mock.Mock
}

func (m *MockAcademicYearRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.AcademicYear, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTermRepository struct {
	mock.Mock
}

func (m *MockTermRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Term, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Term), args.Error(1)
}

func (m *MockTermRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Class), args.Error(1)
}

func (m *MockClassRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
