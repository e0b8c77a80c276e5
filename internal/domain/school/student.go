package school

import (
	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
)

// StudentStatus represents the enrollment status of a student
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusSuspended StudentStatus = "SUSPENDED"
	StudentStatusLeft      StudentStatus = "LEFT"
)

// IsValid checks if the status is a valid StudentStatus
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentStatusActive, StudentStatusSuspended, StudentStatusLeft:
		return true
	}
	return false
}

// Student is a reference-data entity owned by the enrollment subsystem.
// Billing reads it for existence checks and receipt rendering only.
type Student struct {
	shared.BaseEntity
	AdmissionNumber string        `json:"admission_number"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	ClassID         uuid.UUID     `json:"class_id"`
	GuardianPhone   string        `json:"guardian_phone"`
	Status          StudentStatus `json:"status"`
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsActive returns true if the student is actively enrolled
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}
