package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	plain := NotFound("user not found")
	assert.Equal(t, "user not found", plain.Error())

	wrapped := Wrap(errors.New("connection refused"), ErrCodeInternal, "query users")
	assert.Equal(t, "query users: connection refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, ErrCodeInternal, "something failed")

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "no-op"))
}

func TestCodePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsNotFound(NotFoundf("user %q", "a@utem.cl")))
	assert.True(t, IsConflict(Conflict("x")))
	assert.True(t, IsValidation(Validation("x")))
	assert.True(t, IsValidation(ValidationField("email", "required")))
	assert.True(t, IsInternal(Internal("x")))

	assert.False(t, IsNotFound(Conflict("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestCodePredicates_WrappedChain(t *testing.T) {
	err := fmt.Errorf("lookup user: %w", NotFound("user not found"))
	assert.True(t, IsNotFound(err))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeConflict, GetCode(Conflict("x")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
}

func TestValidationField_CarriesField(t *testing.T) {
	err := ValidationField("email", "a valid email is required")

	var appErr *AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "email", appErr.Field)
}
