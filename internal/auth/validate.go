package auth

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/bloghub/bloghub/pkg/domain"
)

// Validation messages. Callers and tests match on these.
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgNameTooShort     = "Name must be at least 3 characters"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidRole      = "Please select a valid role"
)

type loginInput struct {
	Email    string `validate:"required,contains=@"`
	Password string `validate:"required"`
	Role     string `validate:"required,role"`
}

type registerInput struct {
	Name            string `validate:"required,min=3"`
	Email           string `validate:"required,contains=@"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Role            string `validate:"required,role"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("role", roleValidator); err != nil {
		panic("register role validator: " + err.Error())
	}
	return v
}

func roleValidator(fl validator.FieldLevel) bool {
	_, ok := domain.ParseRole(fl.Field().String())
	return ok
}

// check runs v over in and returns the first user-facing message. A missing
// field anywhere outranks every other rule.
func check(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return validationError(MsgFillAllFields)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return validationError(MsgFillAllFields)
		}
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "contains":
		return validationError(MsgInvalidEmail)
	case "min":
		if fe.Field() == "Name" {
			return validationError(MsgNameTooShort)
		}
		return validationError(MsgPasswordTooShort)
	case "eqfield":
		return validationError(MsgPasswordMismatch)
	case "role":
		return validationError(MsgInvalidRole)
	}
	return validationError(MsgFillAllFields)
}
