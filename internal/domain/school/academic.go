package school

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolms/backend/internal/domain/shared"
)

// AcademicYear identifies a school year (e.g. "2026")
type AcademicYear struct {
	shared.BaseEntity
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsCurrent bool      `json:"is_current"`
}

// Term identifies a term within an academic year
type Term struct {
	shared.BaseEntity
	AcademicYearID uuid.UUID `json:"academic_year_id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// Class identifies a class/grade level (e.g. "P.5")
type Class struct {
	shared.BaseEntity
	Name    string `json:"name"`
	Section string `json:"section"`
}
