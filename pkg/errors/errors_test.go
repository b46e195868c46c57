package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	e := InvalidInput("email is required")
	assert.Contains(t, e.Error(), "INVALID_INPUT")
	assert.Contains(t, e.Error(), "email is required")

	wrapped := Internal(errors.New("boom"))
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAppErrorUnwrap(t *testing.T) {
	e := NotFound("order", "ord_1")
	assert.True(t, errors.Is(e, ErrNotFound))

	e2 := Unauthorized("session expired")
	assert.True(t, errors.Is(e2, ErrUnauthorized))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("user", "u1"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("ctx: %w", Backend("upstream down")), http.StatusBadGateway},
		{"sentinel invalid input", fmt.Errorf("x: %w", ErrInvalidInput), http.StatusBadRequest},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown error", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
