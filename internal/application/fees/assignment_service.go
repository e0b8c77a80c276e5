package fees

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AssignmentService creates student fee obligations from fee structures.
type AssignmentService struct {
	structureRepo  fees.FeeStructureRepository
	studentFeeRepo fees.StudentFeeRepository
	studentRepo    school.StudentRepository
	logger         *zap.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	structureRepo fees.FeeStructureRepository,
	studentFeeRepo fees.StudentFeeRepository,
	studentRepo school.StudentRepository,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		structureRepo:  structureRepo,
		studentFeeRepo: studentFeeRepo,
		studentRepo:    studentRepo,
		logger:         logger,
	}
}

// StudentDiscount is an optional per-student discount for an assignment run
type StudentDiscount struct {
	Amount valueobject.Money
	Reason string
}

// AssignFeesRequest represents a request to assign one fee structure to a
// set of students
type AssignFeesRequest struct {
	FeeStructureID uuid.UUID
	StudentIDs     []uuid.UUID
	// Discounts maps student id to an optional discount. Students without
	// an entry get the full structure amount.
	Discounts map[uuid.UUID]StudentDiscount
}

// SkippedStudent explains why one student got no new obligation
type SkippedStudent struct {
	StudentID uuid.UUID `json:"student_id"`
	Reason    string    `json:"reason"`
}

// AssignFeesResult summarizes an assignment run
type AssignFeesResult struct {
	Created         int              `json:"created"`
	Skipped         int              `json:"skipped"`
	SkippedStudents []SkippedStudent `json:"skipped_students,omitempty"`
}

// AssignFees creates one obligation per listed student for the structure.
// The run is idempotent: students already holding an obligation for this
// structure are skipped and reported, never duplicated. Unknown students are
// likewise skipped and reported rather than failing the whole run.
func (s *AssignmentService) AssignFees(ctx context.Context, req AssignFeesRequest) (*AssignFeesResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "assignment", "assign_fees")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStructureID, req.FeeStructureID.String(),
		"student_count", len(req.StudentIDs),
	)

	if len(req.StudentIDs) == 0 {
		err := shared.NewDomainError(shared.CodeValidation, "Student list cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}

	structure, err := s.structureRepo.FindByID(ctx, req.FeeStructureID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load fee structure: %w", err)
	}
	if structure == nil {
		err := shared.NewDomainError(shared.CodeNotFound, "Fee structure not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	known, err := s.studentRepo.FindByIDs(ctx, req.StudentIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	knownIDs := make(map[uuid.UUID]bool, len(known))
	for _, st := range known {
		knownIDs[st.ID] = true
	}

	result := &AssignFeesResult{}
	seen := make(map[uuid.UUID]bool, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		if seen[studentID] {
			continue
		}
		seen[studentID] = true

		if !knownIDs[studentID] {
			result.Skipped++
			result.SkippedStudents = append(result.SkippedStudents, SkippedStudent{
				StudentID: studentID,
				Reason:    "student not found",
			})
			continue
		}

		discount := valueobject.Zero()
		discountReason := ""
		if d, ok := req.Discounts[studentID]; ok {
			discount = d.Amount
			discountReason = d.Reason
		}

		fee, err := fees.NewStudentFee(studentID, structure, discount, discountReason)
		if err != nil {
			result.Skipped++
			result.SkippedStudents = append(result.SkippedStudents, SkippedStudent{
				StudentID: studentID,
				Reason:    err.Error(),
			})
			continue
		}

		created, err := s.studentFeeRepo.CreateIfAbsent(ctx, fee)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to create student fee: %w", err)
		}
		if !created {
			result.Skipped++
			result.SkippedStudents = append(result.SkippedStudents, SkippedStudent{
				StudentID: studentID,
				Reason:    "fee already assigned for this structure",
			})
			continue
		}
		result.Created++
	}

	s.logger.Info("Fee assignment run completed",
		zap.String("fee_structure_id", req.FeeStructureID.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	telemetry.AddEvent(span, "assignment_completed",
		"created", result.Created,
		"skipped", result.Skipped,
	)

	return result, nil
}

// AssignFeesToClass assigns the structure to every student currently in the
// structure's class.
func (s *AssignmentService) AssignFeesToClass(ctx context.Context, feeStructureID uuid.UUID) (*AssignFeesResult, error) {
	structure, err := s.structureRepo.FindByID(ctx, feeStructureID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee structure: %w", err)
	}
	if structure == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Fee structure not found")
	}

	students, err := s.studentRepo.FindByClass(ctx, structure.ClassID, shared.Filter{Page: 1, PageSize: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to load class students: %w", err)
	}
	if len(students) == 0 {
		return &AssignFeesResult{}, nil
	}

	ids := make([]uuid.UUID, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}

	return s.AssignFees(ctx, AssignFeesRequest{
		FeeStructureID: feeStructureID,
		StudentIDs:     ids,
	})
}

// ListStructureAssignments returns the obligations created from a structure,
// one per assigned student
func (s *AssignmentService) ListStructureAssignments(ctx context.Context, feeStructureID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	structure, err := s.structureRepo.FindByID(ctx, feeStructureID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee structure: %w", err)
	}
	if structure == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Fee structure not found")
	}
	return s.studentFeeRepo.FindByStructure(ctx, feeStructureID, filter)
}

// ListStudentFees returns a student's obligations
func (s *AssignmentService) ListStudentFees(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]fees.StudentFee, error) {
	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Student not found")
	}
	return s.studentFeeRepo.FindByStudent(ctx, studentID, filter)
}
