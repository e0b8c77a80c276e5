package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/school"
)

// StudentModel is the persistence model for the Student entity.
type StudentModel struct {
	BaseModel
	AdmissionNumber string               `gorm:"type:varchar(30);not null;uniqueIndex"`
	FirstName       string               `gorm:"type:varchar(100);not null"`
	LastName        string               `gorm:"type:varchar(100);not null"`
	ClassID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	GuardianPhone   string               `gorm:"type:varchar(30)"`
	Status          school.StudentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *school.Student {
	return &school.Student{
		BaseEntity:      m.BaseModel.ToDomain(),
		AdmissionNumber: m.AdmissionNumber,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		ClassID:         m.ClassID,
		GuardianPhone:   m.GuardianPhone,
		Status:          m.Status,
	}
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(s *school.Student) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.AdmissionNumber = s.AdmissionNumber
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.ClassID = s.ClassID
	m.GuardianPhone = s.GuardianPhone
	m.Status = s.Status
}

// AcademicYearModel is the persistence model for the AcademicYear entity.
type AcademicYearModel struct {
	BaseModel
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	IsCurrent bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AcademicYearModel) TableName() string {
	return "academic_years"
}

// ToDomain converts the persistence model to a domain AcademicYear entity.
func (m *AcademicYearModel) ToDomain() *school.AcademicYear {
	return &school.AcademicYear{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		IsCurrent:  m.IsCurrent,
	}
}

// FromDomain populates the persistence model from a domain AcademicYear entity.
func (m *AcademicYearModel) FromDomain(y *school.AcademicYear) {
	m.FromDomainBaseEntity(y.BaseEntity)
	m.Name = y.Name
	m.StartDate = y.StartDate
	m.EndDate = y.EndDate
	m.IsCurrent = y.IsCurrent
}

// TermModel is the persistence model for the Term entity.
type TermModel struct {
	BaseModel
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(50);not null"`
	StartDate      time.Time `gorm:"not null"`
	EndDate        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TermModel) TableName() string {
	return "terms"
}

// ToDomain converts the persistence model to a domain Term entity.
func (m *TermModel) ToDomain() *school.Term {
	return &school.Term{
		BaseEntity:     m.BaseModel.ToDomain(),
		AcademicYearID: m.AcademicYearID,
		Name:           m.Name,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain Term entity.
func (m *TermModel) FromDomain(t *school.Term) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.AcademicYearID = t.AcademicYearID
	m.Name = t.Name
	m.StartDate = t.StartDate
	m.EndDate = t.EndDate
}

// ClassModel is the persistence model for the Class entity.
type ClassModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(50);not null;uniqueIndex:idx_classes_name_section"`
	Section string `gorm:"type:varchar(20);uniqueIndex:idx_classes_name_section"`
}

// TableName returns the table name for GORM
func (ClassModel) TableName() string {
	return "classes"
}

// ToDomain converts the persistence model to a domain Class entity.
func (m *ClassModel) ToDomain() *school.Class {
	return &school.Class{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Section:    m.Section,
	}
}

// FromDomain populates the persistence model from a domain Class entity.
func (m *ClassModel) FromDomain(c *school.Class) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Section = c.Section
}
