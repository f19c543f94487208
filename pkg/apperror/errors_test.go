package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError_Unwraps(t *testing.T) {
	err := fmt.Errorf("saving: %w", NewConflictError("Receipt is deleted"))

	assert.True(t, IsAppError(err))
	got := GetAppError(err)
	assert.Equal(t, http.StatusConflict, got.Code)
	assert.Equal(t, "Receipt is deleted", got.Message)
}

func TestGetAppError_PlainErrorIs500(t *testing.T) {
	got := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, got.Code)
	assert.Equal(t, "boom", got.Message)
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "Receipt not found", NewNotFoundError("Receipt").Message)
	assert.Equal(t, http.StatusServiceUnavailable, NewUnavailableError("x").Code)

	v := NewValidationError([]FieldError{{Field: "reason", Message: "is required"}})
	assert.Equal(t, http.StatusUnprocessableEntity, v.Code)
	assert.Len(t, v.Errors, 1)
}
