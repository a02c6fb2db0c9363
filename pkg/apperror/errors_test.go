package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestMapErrorToStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, MapErrorToStatus(fmt.Errorf("post p1: %w", ErrNotFound)))
	assert.Equal(t, http.StatusUnauthorized, MapErrorToStatus(ErrSignedOut))
	assert.Equal(t, http.StatusForbidden, MapErrorToStatus(ErrForbidden))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusConflict, MapErrorToStatus(ErrConflict))
	assert.Equal(t, http.StatusTooManyRequests, MapErrorToStatus(ErrRateLimitExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, MapErrorToStatus(ErrUnavailable))
	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatus(fmt.Errorf("boom")))
	assert.Equal(t, http.StatusTeapot, MapErrorToStatus(New(http.StatusTeapot, "short and stout", ErrNotFound)))
}
