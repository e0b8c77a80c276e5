package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/schoolms/backend/internal/domain/billing"
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Call once at startup.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("paymentmethod", validatePaymentMethod)
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return billing.PaymentMethod(fl.Field().String()).IsValid()
}
