package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestCloneMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Clone(ErrNotFound, "course not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "course not found", FromError(err).Message)
}

func TestFieldError(t *testing.T) {
	err := FieldError("degree", "degree cannot exceed the course maximum of 100")
	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, map[string]string{"degree": "degree cannot exceed the course maximum of 100"}, err.Fields)
	assert.Nil(t, ErrValidation.Fields)
}
