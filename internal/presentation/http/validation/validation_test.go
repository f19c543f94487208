package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Category string `json:"category" binding:"omitempty,category"`
	EmpCode  string `json:"emp_code" binding:"required,empcode"`
	From     string `form:"from" binding:"omitempty,isodate"`
}

func TestRegisteredTags(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())

	assert.NoError(t, binding.Validator.ValidateStruct(&sample{Category: "ncd", EmpCode: "ECS497", From: "2025-03-14"}))

	err := binding.Validator.ValidateStruct(&sample{Category: "ULIP", EmpCode: "E-1", From: "14/03/2025"})
	require.Error(t, err)

	appErr := apperror.GetAppError(FieldErrors(err))
	assert.Equal(t, 422, appErr.Code)
	fields := map[string]string{}
	for _, fe := range appErr.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "emp_code")
	assert.Contains(t, fields, "from")
}

func TestFieldErrors_NonValidation(t *testing.T) {
	appErr := apperror.GetAppError(FieldErrors(errors.New("unexpected EOF")))
	assert.Equal(t, 400, appErr.Code)
}
