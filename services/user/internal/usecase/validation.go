package usecase

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"user-admin/services/user/internal/entity"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordMeetsPolicy(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// PasswordMeetsPolicy requires six to 72 bytes mixing upper case, lower case,
// a digit and a non-alphanumeric character.
func PasswordMeetsPolicy(password string) bool {
	if len(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func validateInput(input *entity.CreateOrUpdateUserInput) *entity.ValidationError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return entity.NewValidationError("", err.Error(), "invalid")
	}

	verr := &entity.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, entity.FieldError{
			Field:   fieldPath(fe),
			Message: errorMessage(fe),
			Type:    fe.Tag(),
		})
	}
	return verr
}

// fieldPath drops the root struct name: "CreateOrUpdateUserInput.user.email" -> "user.email".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Invalid identifier"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "password":
		return "Password must be 6 to 72 bytes long and contain upper case, lower case, digit and non-alphanumeric characters"
	default:
		return "Invalid value"
	}
}
