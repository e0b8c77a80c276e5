package fees

import (
	"github.com/schoolms/backend/internal/domain/shared"
)

// FeeCategory names a kind of fee ("Tuition", "Boarding", "Transport").
// A category becomes immutable once a fee structure references it.
type FeeCategory struct {
	shared.BaseEntity
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewFeeCategory creates a new fee category
func NewFeeCategory(name, description string) (*FeeCategory, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Category name cannot exceed 100 characters")
	}
	return &FeeCategory{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
	}, nil
}
