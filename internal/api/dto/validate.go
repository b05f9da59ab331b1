package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/coursehub/course-service/pkg/util"
)

var validate = validator.New()

// Validate runs struct-tag validation and maps failures to a 400 DomainError
// listing the offending fields.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError("validation failed", details)
}
