package infrastructures

import (
	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

func (v *Validator) Validate(i interface{}) error {
	if i == nil {
		return errors.NewValidationError("Invalid request body")
	}

	err := v.validate.Struct(i)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}
