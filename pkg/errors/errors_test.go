package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit must be positive, got %d", -1)
	if !stderrors.Is(err, ErrInvalidInput) {
		t.Error("AppError should unwrap to its sentinel")
	}
	if err.Error() != "invalid input: limit must be positive, got -1" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrDocumentNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{ErrInternal, http.StatusInternalServerError},
		{stderrors.New("anything else"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrDocumentNotFound), http.StatusNotFound},
		{New(ErrInvalidInput, http.StatusUnprocessableEntity, "explicit code wins"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if got := HTTPStatusCode(tt.err); got != tt.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
