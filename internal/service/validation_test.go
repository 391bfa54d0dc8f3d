package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

func TestValidationErrorUsesJSONNames(t *testing.T) {
	err := NewValidator().Struct(CourseRequest{Name: "Go", MaxDegree: -1, MinPassDegree: -1})
	require.Error(t, err)

	appErr := validationError(err, "invalid course payload")
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "invalid course payload", appErr.Message)
	assert.Equal(t, map[string]string{
		"max_degree":      "max_degree must be greater than 0",
		"min_pass_degree": "min_pass_degree must be greater than or equal to 0",
		"department_id":   "department_id is required",
	}, appErr.Fields)
}

func TestValidationErrorWrapsOtherErrors(t *testing.T) {
	appErr := validationError(errors.New("bad input"), "invalid payload")
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, appErr.Fields)
}

func TestValidationStringLength(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	err := NewValidator().Struct(DepartmentRequest{Name: string(long)})
	require.Error(t, err)
	assert.Equal(t, "name must be at most 100 characters", validationError(err, "x").Fields["name"])
}
