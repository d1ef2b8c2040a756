package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := CalendarWriteFailed("create trip event", cause)

	assert.Equal(t, "[CALENDAR_WRITE_FAILED] failed to create trip event: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[INVALID_ARGUMENT] empty message", InvalidArgument("empty message").Error())
}

func TestAppError_WithContext(t *testing.T) {
	err := ScheduleConflict("conflicts found").
		WithContext("days", 2).
		WithContextMap(map[string]interface{}{"summary": "Yoga"})

	assert.Equal(t, 2, err.Context["days"])
	assert.Equal(t, "Yoga", err.Context["summary"])
	assert.Equal(t, ErrCodeScheduleConflict, err.GetCode())
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("handle message: %w", Timeout("calendar timed out"))

	assert.True(t, IsCode(wrapped, ErrCodeTimeout))
	assert.False(t, IsCode(wrapped, ErrCodeInternal))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeTimeout))
	assert.Equal(t, ErrCodeTimeout, GetCodeFromError(wrapped, ErrCodeInternal))
	assert.Equal(t, ErrCodeInternal, GetCodeFromError(stderrors.New("plain"), ErrCodeInternal))
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		ErrCodeInvalidArgument:     http.StatusBadRequest,
		ErrCodeParseFailed:         http.StatusBadRequest,
		ErrCodeScheduleConflict:    http.StatusConflict,
		ErrCodeRateLimitExceeded:   http.StatusTooManyRequests,
		ErrCodeCalendarUnavailable: http.StatusServiceUnavailable,
		ErrCodeCalendarWriteFailed: http.StatusBadGateway,
		ErrCodeTimeout:             http.StatusGatewayTimeout,
		ErrCodeInternal:            http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}
