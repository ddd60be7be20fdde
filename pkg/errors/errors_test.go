package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("doctor", nil), http.StatusNotFound},
		{"bad request", BadRequest("invalid date", nil), http.StatusBadRequest},
		{"conflict", Conflict("slot taken", nil), http.StatusConflict},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
		{"forbidden", Forbidden(nil), http.StatusForbidden},
		{"internal", Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestAppError_Message(t *testing.T) {
	err := NotFound("service", ErrNotFound)
	assert.Equal(t, "service not found: record not found", err.Error())
	assert.Equal(t, "doctor not found", NotFound("doctor", nil).Error())
}

func TestIsNotFound(t *testing.T) {
	wrapped := fmt.Errorf("failed to get doctor: %w", ErrNotFound)
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", NotFound("service", nil))))
	assert.False(t, IsNotFound(fmt.Errorf("boom")))
	assert.False(t, IsNotFound(BadRequest("bad", nil)))
}

func TestAs_UnwrapsAppError(t *testing.T) {
	err := fmt.Errorf("create appointment: %w", Conflict("slot is no longer available", nil))

	var appErr *AppError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, CodeConflict, appErr.Code)
}

func TestFromLookup(t *testing.T) {
	assert.Nil(t, FromLookup("doctor", nil))

	err := FromLookup("doctor", fmt.Errorf("failed to get doctor: %w", ErrNotFound))
	var appErr *AppError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.Equal(t, "doctor not found", appErr.Message)

	err = FromLookup("doctor", fmt.Errorf("connection reset"))
	assert.False(t, As(err, &appErr))
	assert.EqualError(t, err, "failed to get doctor: connection reset")
}

func TestFromWrite(t *testing.T) {
	var appErr *AppError

	err := FromWrite("doctor", "create", fmt.Errorf("%w: doctors_email_key", ErrDuplicate))
	assert.True(t, As(err, &appErr))
	assert.Equal(t, CodeConflict, appErr.Code)

	err = FromWrite("doctor", "update", ErrNotFound)
	assert.True(t, IsNotFound(err))

	err = FromWrite("doctor", "update", fmt.Errorf("timeout"))
	assert.EqualError(t, err, "failed to update doctor: timeout")
}
