// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/rights-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("iso_date", validateISODate)
	validate.RegisterValidation("contract_status", enumValidator(
		models.ContractStatusActive, models.ContractStatusInPerpetuity, models.ContractStatusTerminated))
	validate.RegisterValidation("exclusivity", enumValidator(
		models.ExclusivityExclusive, models.ExclusivityNonExclusive, models.ExclusivityLimitedExclusive))
	validate.RegisterValidation("royalty_type", enumValidator(
		models.RoyaltyTypeRevenueShare, models.RoyaltyTypeFlatFee))
	validate.RegisterValidation("payment_terms", enumValidator(
		models.PaymentTermsNet30, models.PaymentTermsNet60, models.PaymentTermsNet90))
	validate.RegisterValidation("reporting_frequency", enumValidator(
		models.ReportingFrequencyNone, models.ReportingFrequencyMonthly,
		models.ReportingFrequencyQuarterly, models.ReportingFrequencyAnnually))
	validate.RegisterValidation("content_type", enumValidator(
		models.ContentTypeFilm, models.ContentTypeTVSeries, models.ContentTypeTBNFAST,
		models.ContentTypeTBNLinear, models.ContentTypeWoFFAST))
	validate.RegisterValidation("user_role", enumValidator(models.AllUserRoles...))
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}

func validateISODate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(DateLayout) {
		return false
	}
	_, err := ParseDate(value)
	return err == nil
}

func enumValidator[T ~string](allowed ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase, number, and special character"
	case "iso_date":
		return e.Field() + " must be a date in YYYY-MM-DD format"
	case "contract_status":
		return e.Field() + " must be one of Active, In Perpetuity, Terminated"
	case "exclusivity":
		return e.Field() + " must be one of Exclusive, Non-Exclusive, Limited Exclusive"
	case "royalty_type":
		return e.Field() + " must be one of Revenue Share, Flat Fee"
	case "payment_terms":
		return e.Field() + " must be one of Net 30, Net 60, Net 90"
	case "reporting_frequency":
		return e.Field() + " must be one of None, Monthly, Quarterly, Annually"
	case "content_type":
		return e.Field() + " must be one of Film, TV Series, TBN FAST, TBN Linear, WoF FAST"
	case "user_role":
		return e.Field() + " must be one of Admin, Legal, Finance, Sales Manager, Sales"
	default:
		return e.Field() + " is invalid"
	}
}
