package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad"), http.StatusUnprocessableEntity},
		{"not found", ErrPairNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("loading pair: %w", ErrPairNotFound), http.StatusNotFound},
		{"invalid", ErrInvalidInput, http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrUnavailable, http.StatusServiceUnavailable, "store %s down", "pairs")
	if !Is(err, ErrUnavailable) {
		t.Error("AppError should unwrap to its sentinel")
	}
	if got := err.Error(); got != "dependency unavailable: store pairs down" {
		t.Errorf("Error() = %q", got)
	}
}
