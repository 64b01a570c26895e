package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/khatapp/khata_backend/internal/core/domain"
)

// RegisterCustomValidators wires the domain enum checks into gin's binding
// validator so that request structs can use the paymenttype and salesource tags.
// Must be called once at startup before any routes bind requests.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("paymenttype", validatePaymentType); err != nil {
		return err
	}
	if err := v.RegisterValidation("salesource", validateSaleSource); err != nil {
		return err
	}
	return nil
}

func validatePaymentType(fl validator.FieldLevel) bool {
	return domain.PaymentType(fl.Field().String()).Valid()
}

func validateSaleSource(fl validator.FieldLevel) bool {
	return domain.SaleSource(fl.Field().String()).Valid()
}
