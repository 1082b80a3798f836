package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneBody struct {
	Phone string `json:"phone" validate:"required,ph_phone"`
	Code  string `json:"code" validate:"omitempty,len=6"`
}

func TestValidateStructPhoneRule(t *testing.T) {
	assert.NoError(t, ValidateStruct(phoneBody{Phone: "09171234567"}))

	err := ValidateStruct(phoneBody{Phone: "12345", Code: "12"})
	require.Error(t, err)

	details := FormatValidationErrors(err)
	require.Len(t, details, 2)
	assert.Equal(t, "phone", details[0].Field)
	assert.Equal(t, "ph_phone", details[0].Tag)
	assert.Equal(t, "code", details[1].Field)
	assert.Contains(t, details[1].Message, "exactly 6")
}

func TestFormatValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FormatValidationErrors(assert.AnError))
}
