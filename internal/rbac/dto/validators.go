package dto

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{2,63}$`)

// NewValidator returns a validator with the RBAC custom rules registered
func NewValidator() (*validator.Validate, error) {
	validate := validator.New()
	if err := validate.RegisterValidation("role_name", validateRoleName); err != nil {
		return nil, fmt.Errorf("failed to register role_name validator: %w", err)
	}
	return validate, nil
}

// validateRoleName enforces snake_case role names
func validateRoleName(fl validator.FieldLevel) bool {
	return roleNamePattern.MatchString(fl.Field().String())
}

// ValidateStruct validates a request struct and returns user-facing messages
func ValidateStruct(validate *validator.Validate, s interface{}) []string {
	var messages []string
	if err := validate.Struct(s); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				messages = append(messages, formatValidationError(fe))
			}
		} else {
			messages = append(messages, err.Error())
		}
	}
	return messages
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "role_name":
		return fmt.Sprintf("%s must be snake_case, 3-64 characters", err.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}
