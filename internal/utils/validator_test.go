package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type dateWindow struct {
	Partner   string `json:"partner" validate:"required"`
	StartDate string `json:"start_date" validate:"required,iso_date"`
	Status    string `json:"status" validate:"omitempty,contract_status"`
}

func TestValidateISODate(t *testing.T) {
	assert.NoError(t, ValidateStruct(&dateWindow{Partner: "Acme", StartDate: "2025-01-01"}))
	assert.Error(t, ValidateStruct(&dateWindow{Partner: "Acme", StartDate: "2025-1-1"}))
	assert.Error(t, ValidateStruct(&dateWindow{Partner: "Acme", StartDate: "2025-02-30"}))
}

func TestGetValidationErrorsUsesJSONNames(t *testing.T) {
	errs := GetValidationErrors(ValidateStruct(&dateWindow{StartDate: "tomorrow", Status: "Expired"}))

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Tag
	}

	assert.Equal(t, "required", fields["partner"])
	assert.Equal(t, "iso_date", fields["start_date"])
	assert.Equal(t, "contract_status", fields["status"])
}

func TestStrongPassword(t *testing.T) {
	type pw struct {
		Password string `json:"password" validate:"strong_password"`
	}
	assert.NoError(t, ValidateStruct(&pw{Password: "Secur3!pass"}))
	assert.Error(t, ValidateStruct(&pw{Password: "weakpass"}))
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(assert.AnError))
	assert.Empty(t, GetValidationErrors(nil))
}
